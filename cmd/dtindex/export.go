package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dtindex/internal/analytics"
	"dtindex/internal/charts"
	"dtindex/internal/services"
)

func getExportCmd(st *cliState) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export CODE",
		Short: "Save every row of a company as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, rows, err := st.service.SaveExport(cmd.Context(), args[0], outDir)
			if errors.Is(err, services.ErrEntityNotFound) {
				warnColor.Fprintf(cmd.ErrOrStderr(), "未找到股票代码%s的数据\n", args[0])
				return err
			}
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "已导出 %s 行到 %s\n", humanize.Comma(int64(rows)), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the CSV file into")
	return cmd
}

func getChartCmd(st *cliState) *cobra.Command {
	var (
		entity string
		scope  string
		output string
	)

	cmd := &cobra.Command{
		Use:       "chart KIND",
		Short:     "Render a chart to a PNG file",
		Long:      "Render one of histogram, density, entity-line, entity-bar or trend to a PNG file.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"histogram", "density", "entity-line", "entity-bar", "trend"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := charts.ParseKind(args[0])
			if err != nil {
				return err
			}
			sc, err := analytics.ParseScope(scope)
			if err != nil {
				return err
			}

			png, err := st.service.Chart(cmd.Context(), services.ChartRequest{
				Kind:      kind,
				Selection: analytics.Selection{Entity: entity},
				Scope:     sc,
			})
			if errors.Is(err, services.ErrNoChartData) {
				warnColor.Fprintln(cmd.ErrOrStderr(), "所选范围内没有可绘制的数据")
				return err
			}
			if err != nil {
				return err
			}

			if output == "" {
				output = string(kind) + ".png"
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(output, png, 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			okColor.Fprintf(cmd.OutOrStdout(), "已保存图表 %s (%s)\n", output, humanize.Bytes(uint64(len(png))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&entity, "entity", "e", "", "stock code for entity charts and entity-scoped distributions")
	cmd.Flags().StringVar(&scope, "scope", "all", "distribution scope: all or entity")
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write (default KIND.png)")
	return cmd
}
