// Package reports fetches report data and renders it through the report generator.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"rental-backend/internal/metrics"
	"rental-backend/internal/report"
	"rental-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

const (
	KindContracts = "contracts"
	KindCars      = "cars"

	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

var contentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Builder renders a report kind in a format. Used by the HTTP handlers and the CLI.
type Builder struct {
	st      *store.Store
	gen     *report.Generator
	metrics *metrics.Metrics
}

func NewBuilder(st *store.Store, gen *report.Generator, m *metrics.Metrics) *Builder {
	return &Builder{st: st, gen: gen, metrics: m}
}

// Filename is the attachment name, e.g. report_contracts.pdf.
func Filename(kind, format string) string {
	return fmt.Sprintf("report_%s.%s", kind, format)
}

// Write renders the whole document into w. On error nothing is written.
func (b *Builder) Write(ctx context.Context, w io.Writer, kind, format string) error {
	if _, ok := contentTypes[format]; !ok {
		return fmt.Errorf("unknown report format %q", format)
	}

	var buf bytes.Buffer
	switch kind {
	case KindContracts:
		rows, err := b.st.ReportContracts(ctx)
		if err != nil {
			return err
		}
		if format == FormatXLSX {
			err = b.gen.ContractsXLSX(&buf, rows)
		} else {
			err = b.gen.Contracts(&buf, rows)
		}
		if err != nil {
			return fmt.Errorf("render %s %s: %w", kind, format, err)
		}
	case KindCars:
		rows, err := b.st.ReportCars(ctx)
		if err != nil {
			return err
		}
		if format == FormatXLSX {
			err = b.gen.CarsXLSX(&buf, rows)
		} else {
			err = b.gen.Cars(&buf, rows)
		}
		if err != nil {
			return fmt.Errorf("render %s %s: %w", kind, format, err)
		}
	default:
		return fmt.Errorf("unknown report kind %q", kind)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write %s report: %w", kind, err)
	}
	b.metrics.RecordReport(kind, format)
	return nil
}

// GET /api/reports/contracts, /api/reports/cars.xlsx, ...
func Handler(b *Builder, kind, format string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := b.Write(c.UserContext(), &buf, kind, format); err != nil {
			return err
		}
		c.Attachment(Filename(kind, format))
		c.Set(fiber.HeaderContentType, contentTypes[format])
		return c.Send(buf.Bytes())
	}
}
