package report

import (
	"strings"
	"time"

	"rental-backend/internal/models"
)

const (
	StatusContractClosed   = "ДОГОВОР ЗАКРЫТ"
	StatusContractFinished = "ДОГОВОР ЗАВЕРШЁН"
	StatusContractActive   = "ДОГОВОР АКТИВЕН"
	StatusCarFree          = "СВОБОДЕН/ДОСТУПЕН"
)

var closedMarkers = []string{"закры", "заверш", "окончен"}

// ContractStatusText derives the printed status. A stored closing status wins over the dates.
func ContractStatusText(stored string, returnDate, today time.Time) string {
	s := strings.ToLower(strings.TrimSpace(stored))
	for _, m := range closedMarkers {
		if strings.Contains(s, m) {
			return StatusContractClosed
		}
	}
	if !returnDate.IsZero() && returnDate.Before(today) {
		return StatusContractFinished
	}
	return StatusContractActive
}

// CarStatusText collapses the rentable statuses into one label.
func CarStatusText(stored string) string {
	if models.IsFreeCarStatus(stored) {
		return StatusCarFree
	}
	return stored
}
