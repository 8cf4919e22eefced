package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/folio/internal/documents"
	"github.com/dgallion1/folio/internal/export"
	"github.com/dgallion1/folio/internal/store"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <document-id>",
	Short: "Export a saved document",
	Long: `Export a saved document as PDF or Markdown.

Example:
  folio export 3f1c... --format pdf --out notes.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "output format: pdf or md")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default is <slug>.<format>, - for stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "pdf" && exportFormat != "md" {
		return fmt.Errorf("unknown format %q (want pdf or md)", exportFormat)
	}

	st, err := openStore(cmd.Context(), slog.Default())
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := documents.NewService(st, slog.Default()).Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = doc.Slug + "." + exportFormat
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := writeExport(w, doc); err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
	}
	return nil
}

func writeExport(w io.Writer, doc *store.Document) error {
	if exportFormat == "pdf" {
		return export.PDF(w, doc, pageOptions(cfg.Page))
	}
	md, err := export.Markdown(doc)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, md)
	return err
}
