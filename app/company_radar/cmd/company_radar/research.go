package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/engine"
	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/session"
)

var (
	subjectFlags dm.Subject
	withSummary  bool
)

var researchCmd = &cobra.Command{
	Use:     "research",
	Short:   "Collect data about a company and print what was found",
	Example: `  company_radar research --name "Acme Corp" --domain acme.com --ticker ACME --summary`,
	RunE:    runResearch,
}

func init() {
	addSubjectFlags(researchCmd)
	researchCmd.Flags().BoolVar(&withSummary, "summary", false, "also generate an LLM summary")
}

func addSubjectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&subjectFlags.Name, "name", "n", "", "company name")
	cmd.Flags().StringVarP(&subjectFlags.Domain, "domain", "d", "", "company website domain (optional)")
	cmd.Flags().StringVarP(&subjectFlags.Ticker, "ticker", "t", "", "stock ticker symbol (optional)")
}

func runResearch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess, err := session.NewFromConfig(ctx, appConfig)
	if err != nil {
		return err
	}
	record, err := research(ctx, cmd, sess, subjectFlags)
	if err != nil {
		return err
	}

	printSources(cmd, record)
	if withSummary {
		fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown("## Summary\n\n"+sess.Summarize(ctx)))
	}
	return nil
}

func research(ctx context.Context, cmd *cobra.Command, sess *session.Session, subject dm.Subject) (*dm.AggregateRecord, error) {
	out := cmd.ErrOrStderr()
	record, err := sess.Research(ctx, subject, engine.RunOptions{
		ProgressCallback: func(kind dm.SourceKind, done, total int) {
			fmt.Fprintf(out, "[%d/%d] %s\n", done, total, kind.DisplayName())
		},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(cmd.OutOrStdout(), record.PresenceSummary)
	return record, nil
}

func printSources(cmd *cobra.Command, record *dm.AggregateRecord) {
	var sb strings.Builder
	if record.WebsiteURL != "" {
		fmt.Fprintf(&sb, "**Website:** %s\n\n", record.WebsiteURL)
	}
	if record.Logo != nil {
		fmt.Fprintf(&sb, "**Logo:** %s\n\n", record.Logo.Body)
	}
	for _, src := range record.Sources {
		if !src.Succeeded || src.Kind == dm.KindLogo {
			continue
		}
		fmt.Fprintf(&sb, "### %s\n\n%s\n\n", src.Kind.DisplayName(), src.Body)
	}
	if sb.Len() == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(sb.String()))
}
