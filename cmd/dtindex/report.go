package main

import (
	"io"

	"github.com/spf13/cobra"

	"dtindex/internal/analytics"
	"dtindex/internal/exporter"
	"dtindex/pkg/contracts/domain"
)

func getSummaryCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print dataset-wide statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := st.service.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return exporter.WriteSummaryText(cmd.OutOrStdout(), summary)
		},
	}
}

func getEntityCmd(st *cliState) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "entity CODE",
		Short: "Print one company's index history",
		Long: `Print the name, years and yearly index values of one stock code,
followed by its rows. With --year the value of that year is shown as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := analytics.Selection{Entity: args[0]}
			if cmd.Flags().Changed("year") {
				sel.Year = &year
			}

			panel, err := st.service.Entity(cmd.Context(), sel)
			if err != nil {
				return err
			}
			if !panel.Found {
				printNotices(cmd.ErrOrStderr(), panel.Notices)
				return nil
			}
			return exporter.WriteEntityText(cmd.OutOrStdout(), panel)
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "fiscal year to show")
	return cmd
}

func getTrendCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Print yearly averages and the fitted trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			trend, err := st.service.Trend(cmd.Context())
			if err != nil {
				return err
			}
			return exporter.WriteTrendText(cmd.OutOrStdout(), trend)
		},
	}
}

func printNotices(w io.Writer, notices []domain.Notice) {
	for _, n := range notices {
		if n.Level == domain.NoticeInfo {
			_, _ = io.WriteString(w, n.Message+"\n")
			continue
		}
		warnColor.Fprintln(w, n.Message)
	}
}
