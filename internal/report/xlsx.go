package report

import (
	"fmt"
	"io"
	"time"

	"rental-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

var (
	contractColumns = []any{"№", "Клиент", "Авто", "Гос. номер", "VIN", "Выдача", "Возврат",
		"Филиал выдачи", "Филиал возврата", "Оплата", "Статус БД", "Статус", "Цена/сутки", "Итог"}
	carColumns = []any{"Марка", "Модель", "Гос. номер", "VIN", "Категория", "Филиал",
		"Год", "Пробег, км", "Статус", "Цена за сутки"}
)

// ContractsXLSX writes the contract report as a spreadsheet with the same derived status.
func (g *Generator) ContractsXLSX(w io.Writer, contracts []models.Contract) error {
	today := models.DateOf(g.now())
	rows := make([][]any, 0, len(contracts))
	for _, ct := range contracts {
		if ct.Client == nil || ct.Car == nil || ct.Status == nil || ct.IssueBranch == nil || ct.ReturnBranch == nil {
			return fmt.Errorf("contract %d: related records not loaded", ct.ID)
		}
		daily, _ := ct.DailyPrice.Float64()
		total, _ := ct.TotalAmount.Float64()
		rows = append(rows, []any{
			ct.ID, ct.Client.FullName, ct.Car.Title(), ct.Car.Plate, ct.Car.VIN,
			FormatDate(ct.IssueDate), FormatDate(ct.ReturnDate),
			ct.IssueBranch.Name, ct.ReturnBranch.Name, ct.Payment, ct.Status.Status,
			ContractStatusText(ct.Status.Status, ct.ReturnDate, today), daily, total,
		})
	}
	return writeSheet(w, "Договоры", contractColumns, rows, g.now())
}

// CarsXLSX writes the fleet report as a spreadsheet.
func (g *Generator) CarsXLSX(w io.Writer, cars []models.Car) error {
	rows := make([][]any, 0, len(cars))
	for _, car := range cars {
		if car.Category == nil || car.Status == nil || car.Branch == nil {
			return fmt.Errorf("car %d: related records not loaded", car.ID)
		}
		price, _ := car.DailyPrice.Float64()
		rows = append(rows, []any{
			car.Brand, car.Model, car.Plate, car.VIN, car.Category.Name, car.Branch.Name,
			car.YearMade, car.Mileage, CarStatusText(car.Status.Status), price,
		})
	}
	return writeSheet(w, "Автомобили", carColumns, rows, g.now())
}

func writeSheet(w io.Writer, sheet string, header []any, rows [][]any, generated time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("xlsx header style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	footer, _ := excelize.CoordinatesToCellName(1, len(rows)+3)
	if err := f.SetCellValue(sheet, footer, "Сформировано: "+generated.Format("02.01.2006 15:04")); err != nil {
		return fmt.Errorf("xlsx footer: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
