package dashboard

import (
	"sort"
	"time"

	"rental-backend/internal/models"

	"github.com/shopspring/decimal"
)

type Aggregate int

const (
	Count Aggregate = iota
	Sum
	Average
)

// Point is one dated amount, usually a contract's issue date and total.
type Point struct {
	Date  time.Time
	Value decimal.Decimal
}

// Series is a chart-ready pair of labels and values.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func newSeries(n int) Series {
	return Series{Labels: make([]string, 0, n), Values: make([]float64, 0, n)}
}

// ByMonth groups points by calendar month, labelled "01.2006", in chronological order.
// Months without points do not appear, so Average never divides by zero.
func ByMonth(points []Point, agg Aggregate) Series {
	type bucket struct {
		month time.Time
		count int64
		sum   decimal.Decimal
	}
	buckets := make(map[time.Time]*bucket)
	for _, p := range points {
		m := time.Date(p.Date.Year(), p.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[m]
		if !ok {
			b = &bucket{month: m}
			buckets[m] = b
		}
		b.count++
		b.sum = b.sum.Add(p.Value)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].month.Before(ordered[j].month) })

	out := newSeries(len(ordered))
	for _, b := range ordered {
		var v decimal.Decimal
		switch agg {
		case Count:
			v = decimal.NewFromInt(b.count)
		case Sum:
			v = b.sum
		case Average:
			v = b.sum.Div(decimal.NewFromInt(b.count)).Round(2)
		}
		f, _ := v.Float64()
		out.Labels = append(out.Labels, b.month.Format("01.2006"))
		out.Values = append(out.Values, f)
	}
	return out
}

// ByCategory counts occurrences of each name in first-seen order.
func ByCategory(names []string) Series {
	idx := make(map[string]int)
	out := newSeries(len(names))
	for _, n := range names {
		i, ok := idx[n]
		if !ok {
			i = len(out.Labels)
			idx[n] = i
			out.Labels = append(out.Labels, n)
			out.Values = append(out.Values, 0)
		}
		out.Values[i]++
	}
	return out
}

// Revenue is an amount earned by one car.
type Revenue struct {
	Key    uint
	Label  string
	Amount decimal.Decimal
}

// TopN sums amounts per key and keeps the n largest. Ties keep first-seen order.
func TopN(rows []Revenue, n int) Series {
	var totals []Revenue
	idx := make(map[uint]int)
	for _, r := range rows {
		i, ok := idx[r.Key]
		if !ok {
			idx[r.Key] = len(totals)
			totals = append(totals, Revenue{Key: r.Key, Label: r.Label})
			i = len(totals) - 1
		}
		totals[i].Amount = totals[i].Amount.Add(r.Amount)
	}

	sort.SliceStable(totals, func(i, j int) bool { return totals[i].Amount.GreaterThan(totals[j].Amount) })
	if n >= 0 && len(totals) > n {
		totals = totals[:n]
	}

	out := newSeries(len(totals))
	for _, t := range totals {
		f, _ := t.Amount.Float64()
		out.Labels = append(out.Labels, t.Label)
		out.Values = append(out.Values, f)
	}
	return out
}

// ContractPoints turns contracts into issue-date/total points.
func ContractPoints(contracts []models.Contract) []Point {
	out := make([]Point, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, Point{Date: c.IssueDate, Value: c.TotalAmount})
	}
	return out
}

// CarRevenue turns contracts with loaded cars into per-car revenue rows.
func CarRevenue(contracts []models.Contract) []Revenue {
	out := make([]Revenue, 0, len(contracts))
	for _, c := range contracts {
		label := ""
		if c.Car != nil {
			label = c.Car.Label()
		}
		out = append(out, Revenue{Key: c.CarID, Label: label, Amount: c.TotalAmount})
	}
	return out
}

// CategoryNames lists the category name of each car with a loaded category.
func CategoryNames(cars []models.Car) []string {
	out := make([]string, 0, len(cars))
	for _, c := range cars {
		if c.Category != nil {
			out = append(out, c.Category.Name)
		}
	}
	return out
}
