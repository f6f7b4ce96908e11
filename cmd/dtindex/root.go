package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dtindex/internal/config"
	"dtindex/internal/dataset"
	apperrors "dtindex/internal/errors"
	"dtindex/internal/infrastructure"
	"dtindex/internal/services"
	"dtindex/pkg/contracts"
)

// cliState is shared by the root command and its subcommands.
type cliState struct {
	configFile string
	dataFile   string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	service *services.ReportService
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
)

func getRootCmd() *cobra.Command {
	st := &cliState{}

	cmd := &cobra.Command{
		Version: contracts.GetFullVersionString(),
		Use:     "dtindex",
		Short:   "Digital transformation index report",
		Long: `dtindex reads a spreadsheet of corporate digital transformation index
records and prints the dataset summary, one company's history and the
overall trend. Entity rows can be exported as CSV and every chart of the
web report can be rendered to a PNG file.`,
		PersistentPreRunE: st.bootstrap,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	cmd.PersistentFlags().StringVarP(&st.configFile, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVarP(&st.dataFile, "file", "f", "", "dataset file (overrides DTI_DATASET_FILE)")
	cmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "warn", "log level written to stderr")
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		getSummaryCmd(st),
		getEntityCmd(st),
		getTrendCmd(st),
		getExportCmd(st),
		getChartCmd(st),
	)
	return cmd
}

// bootstrap loads configuration and the dataset. A dataset hard stop is
// printed with its diagnostics and ends the command.
func (st *cliState) bootstrap(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(st.configFile)
	if err != nil {
		errColor.Fprintf(cmd.ErrOrStderr(), "配置错误：%v\n", err)
		return apperrors.NewConfigError("failed to load configuration", err).
			WithContext("file", st.configFile)
	}
	if st.dataFile != "" {
		cfg.Dataset.Path = st.dataFile
	}
	cfg.Logging.Level = st.logLevel

	logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	st.cfg = cfg
	st.logger = logger.With(slog.String("component", "cli"))
	st.service = services.NewReportService(cfg.Dataset, cfg.Charts,
		dataset.NewLoader(logger, cfg.Dataset.RequiredColumns()), logger)

	if err := st.service.Load(cmd.Context()); err != nil {
		var failure *services.LoadFailure
		if errors.As(err, &failure) {
			printFailure(cmd.ErrOrStderr(), failure)
		}
		return err
	}
	return nil
}

func printFailure(w io.Writer, f *services.LoadFailure) {
	errColor.Fprintln(w, f.Message)
	if f.WorkingDir != "" {
		fmt.Fprintf(w, "当前工作目录：%s\n", f.WorkingDir)
	}
	if len(f.Listing) > 0 {
		fmt.Fprintf(w, "目录中的文件：%s\n", strings.Join(f.Listing, ", "))
	}
	for _, a := range f.Attempts {
		fmt.Fprintf(w, "  - %s\n", a)
	}
}
