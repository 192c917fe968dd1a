package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <collection> <file...>",
	Short: "Index record exports or text files into a collection",
	Long: `Load municipalities.json / landmarks.json record exports or plain-text
news files, split them into chunks and add them to the named collection,
creating it if needed.

Examples:
  travelchat ingest municipalities data/municipalities.json
  travelchat ingest landmarks data/landmarks.json
  travelchat ingest news_articles "data/news/*.txt"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	in, err := newIngester(cfg)
	if err != nil {
		return err
	}
	report, err := in.Ingest(cmd.Context(), args[0], args[1:])
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ingested %d documents (%d chunks) into %s\n", report.Documents, report.Chunks, report.Collection)
	if len(report.TopTerms) > 0 {
		terms := make([]string, len(report.TopTerms))
		for i, t := range report.TopTerms {
			terms[i] = fmt.Sprintf("%s (%d)", t.Word, t.Count)
		}
		fmt.Fprintf(out, "Top terms: %s\n", strings.Join(terms, ", "))
	}
	if report.Summary != "" {
		fmt.Fprintf(out, "\nSummary:\n%s\n", report.Summary)
	}
	return nil
}
