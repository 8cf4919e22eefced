package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/folio/internal/documents"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved documents, newest first",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context(), slog.Default())
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := documents.NewService(st, slog.Default()).List(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPAGES\tCREATED")
	for _, d := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.ID, d.Title, d.TotalPages, d.CreatedAt.Format("02 Jan 2006"))
	}
	return tw.Flush()
}
