package dashboard

import (
	"context"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type LastContract struct {
	ID          uint            `json:"id"`
	Client      string          `json:"client"`
	Car         string          `json:"car"`
	IssueDate   string          `json:"issue_date"`
	ReturnDate  string          `json:"return_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type HomeResponse struct {
	TotalClients    int64          `json:"total_clients"`
	TotalCars       int64          `json:"total_cars"`
	ActiveContracts int64          `json:"active_contracts"`
	FreeCars        int64          `json:"free_cars"`
	BusyCars        int64          `json:"busy_cars"`
	ContractsToday  int64          `json:"contracts_today"`
	ContractsWeek   int64          `json:"contracts_week"`
	LastContracts   []LastContract `json:"last_contracts"`
}

// GET /api/dashboard
func HomeHandler(st *store.Store, today func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hc, err := st.HomeCounters(c.UserContext(), today())
		if err != nil {
			return err
		}

		last := make([]LastContract, 0, len(hc.LastContracts))
		for _, ct := range hc.LastContracts {
			lc := LastContract{
				ID:          ct.ID,
				IssueDate:   ct.IssueDate.Format(models.DateLayout),
				ReturnDate:  ct.ReturnDate.Format(models.DateLayout),
				TotalAmount: ct.TotalAmount,
			}
			if ct.Client != nil {
				lc.Client = ct.Client.FullName
			}
			if ct.Car != nil {
				lc.Car = ct.Car.Label()
			}
			last = append(last, lc)
		}

		return c.JSON(HomeResponse{
			TotalClients:    hc.TotalClients,
			TotalCars:       hc.TotalCars,
			ActiveContracts: hc.ActiveContracts,
			FreeCars:        hc.FreeCars,
			BusyCars:        hc.BusyCars,
			ContractsToday:  hc.ContractsToday,
			ContractsWeek:   hc.ContractsWeek,
			LastContracts:   last,
		})
	}
}

type ChartResponse struct {
	Title        string    `json:"title"`
	ChartType    string    `json:"chart_type"` // line | bar | pie
	DatasetLabel string    `json:"dataset_label"`
	FillArea     bool      `json:"fill_area"`
	Labels       []string  `json:"labels"`
	Values       []float64 `json:"values"`
}

// chart describes one dashboard chart and how its series is built.
type chart struct {
	title, chartType, datasetLabel string
	fill                           bool
	build                          func(ctx context.Context, st *store.Store) (Series, error)
}

func monthly(agg Aggregate) func(context.Context, *store.Store) (Series, error) {
	return func(ctx context.Context, st *store.Store) (Series, error) {
		rows, err := st.RevenueRows(ctx)
		if err != nil {
			return Series{}, err
		}
		return ByMonth(ContractPoints(rows), agg), nil
	}
}

var charts = map[string]chart{
	"contracts": {"Количество договоров по месяцам", "line", "Договоры", true, monthly(Count)},
	"revenue":   {"Выручка по месяцам", "bar", "Выручка ₽", false, monthly(Sum)},
	"avgcheck":  {"Средний чек по месяцам", "line", "Средний чек ₽", true, monthly(Average)},
	"categories": {"Распределение автомобилей по категориям", "pie", "Авто", false,
		func(ctx context.Context, st *store.Store) (Series, error) {
			cars, err := st.CarsWithCategory(ctx)
			if err != nil {
				return Series{}, err
			}
			return ByCategory(CategoryNames(cars)), nil
		}},
	"topcars": {"Автомобили с наибольшей выручкой", "bar", "Выручка ₽", false,
		func(ctx context.Context, st *store.Store) (Series, error) {
			rows, err := st.RevenueRows(ctx)
			if err != nil {
				return Series{}, err
			}
			return TopN(CarRevenue(rows), 5), nil
		}},
}

// GET /api/reports/dashboard/:chart
func ChartHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ch, ok := charts[c.Params("chart")]
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "График не найден")
		}
		s, err := ch.build(c.UserContext(), st)
		if err != nil {
			return err
		}
		return c.JSON(ChartResponse{
			Title:        ch.title,
			ChartType:    ch.chartType,
			DatasetLabel: ch.datasetLabel,
			FillArea:     ch.fill,
			Labels:       s.Labels,
			Values:       s.Values,
		})
	}
}

// GET /api/reports/dashboard/revenue/json
func RevenueJSONHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := monthly(Sum)(c.UserContext(), st)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}
