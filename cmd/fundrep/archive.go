package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	archiveISIN string
	archiveOut  string
	archiveKeep int
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage archived reports",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports, newest first",
	RunE:  runArchiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print an archived report",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

var archivePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest reports per fund and variant",
	RunE:  runArchivePrune,
}

func init() {
	archiveListCmd.Flags().StringVar(&archiveISIN, "isin", "", "only list reports for this ISIN")
	archiveShowCmd.Flags().StringVarP(&archiveOut, "out", "o", "-", "output file, - for stdout")
	archivePruneCmd.Flags().StringVar(&archiveISIN, "isin", "", "only prune reports for this ISIN")
	archivePruneCmd.Flags().IntVar(&archiveKeep, "keep", 5, "reports to keep per fund and variant")

	archiveCmd.AddCommand(archiveListCmd, archiveShowCmd, archivePruneCmd)
	rootCmd.AddCommand(archiveCmd)
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	_, log, a, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	arc, err := a.Archive()
	if err != nil {
		return err
	}
	entries, err := arc.List(cmd.Context(), archiveISIN)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No archived reports.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tISIN\tVARIANT\tKEY")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.ISIN, e.Variant, e.Key)
	}
	return w.Flush()
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	_, log, a, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	arc, err := a.Archive()
	if err != nil {
		return err
	}
	page, err := arc.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if archiveOut == "-" {
		_, err = cmd.OutOrStdout().Write(page)
		return err
	}
	return os.WriteFile(archiveOut, page, 0644)
}

func runArchivePrune(cmd *cobra.Command, args []string) error {
	_, log, a, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	arc, err := a.Archive()
	if err != nil {
		return err
	}
	deleted, err := arc.Prune(cmd.Context(), archiveISIN, archiveKeep)
	if err != nil {
		return err
	}

	for _, key := range deleted {
		fmt.Fprintln(cmd.OutOrStdout(), "deleted", key)
	}
	log.Info("archive pruned", zap.Int("deleted", len(deleted)), zap.Int("keep", archiveKeep))
	return nil
}
