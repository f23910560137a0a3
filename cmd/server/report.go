package main

import (
	"fmt"
	"os"

	"rental-backend/internal/report"
	"rental-backend/internal/reports"
	"rental-backend/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "report [contracts|cars]",
		Short:     "Write a report to a file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{reports.KindContracts, reports.KindCars},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			if kind != reports.KindContracts && kind != reports.KindCars {
				return fmt.Errorf("unknown report %q", kind)
			}
			format, _ := cmd.Flags().GetString("format")
			if format != reports.FormatPDF && format != reports.FormatXLSX {
				return fmt.Errorf("unknown format %q", format)
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = reports.Filename(kind, format)
			}

			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			b := reports.NewBuilder(store.New(db), report.NewGenerator(cfg.FontPath, cfg.Location()), nil)
			if err := b.Write(cmd.Context(), f, kind, format); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Info("report written", zap.String("kind", kind), zap.String("file", out))
			return nil
		},
	}
	cmd.Flags().String("out", "", "output file (default report_<kind>.<format>)")
	cmd.Flags().String("format", reports.FormatPDF, "pdf or xlsx")
	return cmd
}
