package main

import (
	"fmt"
	"os"

	"github.com/newthinker/fundrep/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	renderISIN    string
	renderVariant string
	renderOut     string
	renderArchive bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one fund report to a file or stdout",
	Example: `  fundrep render --isin JP90C0003PR7 --out report.html
  fundrep render --isin JP90C0003PR7 --variant design_b --archive`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderISIN, "isin", "", "fund ISIN code (required)")
	renderCmd.Flags().StringVar(&renderVariant, "variant", report.VariantPrimary.String(), "report design: primary or design_b")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "-", "output file, - for stdout")
	renderCmd.Flags().BoolVar(&renderArchive, "archive", false, "also store the report in the archive")
	renderCmd.MarkFlagRequired("isin")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	variant, err := report.ParseVariant(renderVariant)
	if err != nil {
		return err
	}

	_, log, a, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	page, err := a.Render(cmd.Context(), renderISIN, variant)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", renderISIN, err)
	}

	if renderOut == "-" {
		if _, err := cmd.OutOrStdout().Write(page); err != nil {
			return err
		}
	} else if err := os.WriteFile(renderOut, page, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", renderOut, err)
	}

	if renderArchive {
		arc, err := a.Archive()
		if err != nil {
			return err
		}
		key, err := arc.Store(cmd.Context(), renderISIN, variant.String(), page)
		if err != nil {
			return err
		}
		log.Info("report archived", zap.String("key", key), zap.String("backend", arc.Backend()))
	}
	return nil
}
