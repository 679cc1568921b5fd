package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"goreg/adapters/tableio"
	"goreg/app"
	"goreg/domain/dataset"
	"goreg/domain/model"
	"goreg/domain/table"
	"goreg/internal"
	"goreg/internal/config"
	"goreg/internal/format"
	"goreg/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := internal.NewDefaultLogger()
	svc := app.NewAnalysisService(logger)
	reader := tableio.NewReader()

	rootCmd := &cobra.Command{
		Use:   "goreg",
		Short: "Regression and panel analysis over csv, xlsx, xls and dta files",
	}

	rootCmd.AddCommand(
		newPreviewCmd(reader, cfg),
		newFitCmd(reader, svc, cfg),
		newDescribeCmd(reader, svc, cfg),
		newCorrCmd(reader, svc, cfg),
		newVIFCmd(reader, svc, cfg),
		newFreqCmd(reader, svc, cfg),
		newFTestCmd(reader, svc, cfg),
		newHausmanCmd(reader, svc, cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPreviewCmd(reader ports.TableProvider, cfg *config.Config) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Show column names, inferred kinds and the first rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := reader.LoadPreview(args[0], rows)
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), previewTable(frame, args[0]))
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", cfg.Preview.Rows, "Number of data rows to preview")

	return cmd
}

func previewTable(f *dataset.Frame, path string) *table.Table {
	names := f.ColumnNames()
	t := &table.Table{Title: "Preview: " + filepath.Base(path)}
	cols := make([]dataset.Column, len(names))
	for i, name := range names {
		cols[i], _ = f.Column(name)
		t.Columns = append(t.Columns, fmt.Sprintf("%s\n(%s)", name, cols[i].Kind))
	}
	for i := 0; i < f.Rows(); i++ {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = c.Label(i)
		}
		t.Rows = append(t.Rows, table.Row{Kind: table.RowValue, Cells: cells})
	}
	return t
}

func newFitCmd(reader ports.TableProvider, svc *app.AnalysisService, cfg *config.Config) *cobra.Command {
	var methodName, response, regressors, entity, timeVar, effects string
	var covKind, clusterVar, title, statKeys string
	var customRows []string
	var decimals int
	var tstats, detail bool

	cmd := &cobra.Command{
		Use:   "fit [file]",
		Short: "Fit a regression model and print its table",
		Long: `Fit one of the regression methods (ols, logit, probit, fe, re, pooled)
and print the merged result table, or the full per-coefficient view
with --detail.

Example: goreg fit panel.csv --method fe --y output --x capital,labor --entity firm --time year`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := model.ParseMethod(methodName)
			if err != nil {
				return err
			}
			if !method.IsRegression() {
				return fmt.Errorf("method %s has its own subcommand", method)
			}
			custom, err := parseCustomRows(customRows)
			if err != nil {
				return err
			}
			frame, err := reader.Load(args[0])
			if err != nil {
				return err
			}
			out, err := svc.Run(frame, model.Spec{
				Method:     method,
				Response:   response,
				Regressors: splitList(regressors),
				Panel:      model.Panel{Entity: entity, Time: timeVar},
				EffectVars: splitList(effects),
				Covariance: model.Covariance{Kind: model.CovarianceKind(covKind), ClusterVar: clusterVar},
				Decimals:   decimals,
				ShowTStats: tstats,
				Title:      title,
				CustomRows: custom,
			})
			if err != nil {
				return err
			}
			var tbl *table.Table
			if detail {
				tbl, err = svc.Detail(out.Fit, decimals)
			} else {
				tbl, err = svc.Merged([]model.FitResult{*out.Fit}, format.Options{
					Title:      title,
					Decimals:   decimals,
					ShowTStats: tstats,
					StatKeys:   splitList(statKeys),
				})
			}
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), tbl)
			return nil
		},
	}

	cmd.Flags().StringVar(&methodName, "method", "ols", "Regression method: ols, logit, probit, fe, re, pooled")
	cmd.Flags().StringVar(&response, "y", "", "Dependent variable")
	cmd.Flags().StringVar(&regressors, "x", "", "Comma-separated independent variables")
	cmd.Flags().StringVar(&entity, "entity", "", "Entity identifier column (panel methods)")
	cmd.Flags().StringVar(&timeVar, "time", "", "Time identifier column (panel methods)")
	cmd.Flags().StringVar(&effects, "effects", "", "Comma-separated fixed-effect columns (fe)")
	cmd.Flags().StringVar(&covKind, "cov", string(model.CovClassical), "Covariance: classical, robust, cluster")
	cmd.Flags().StringVar(&clusterVar, "cluster-var", "", "Cluster column for --cov cluster")
	cmd.Flags().IntVar(&decimals, "decimals", cfg.Output.Decimals, "Display decimals")
	cmd.Flags().BoolVar(&tstats, "tstats", cfg.Output.ShowTStats, "Show t statistics instead of standard errors")
	cmd.Flags().StringVar(&title, "title", "", "Table title")
	cmd.Flags().StringVar(&statKeys, "stats", strings.Join(cfg.Output.StatKeys, ","), "Comma-separated statistic keys to export")
	cmd.Flags().StringArrayVar(&customRows, "custom", nil, "Custom table row as Label=Value (repeatable)")
	cmd.Flags().BoolVar(&detail, "detail", false, "Print the full coefficient table instead of the merged view")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}

func newDescribeCmd(reader ports.TableProvider, svc *app.AnalysisService, cfg *config.Config) *cobra.Command {
	var vars, stats, group, title string
	var decimals int

	cmd := &cobra.Command{
		Use:   "describe [file]",
		Short: "Descriptive statistics, optionally split by a grouping column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := model.MethodDesc
			if group != "" {
				method = model.MethodGroupedDesc
			}
			return runDiagnostic(cmd, reader, svc, args[0], model.Spec{
				Method:     method,
				Regressors: splitList(vars),
				DescStats:  splitList(stats),
				GroupVar:   group,
				Decimals:   decimals,
				Title:      title,
			})
		},
	}

	cmd.Flags().StringVar(&vars, "vars", "", "Comma-separated variables")
	cmd.Flags().StringVar(&stats, "stats", "", "Comma-separated statistics (nobs, mean, std, min, max, p50)")
	cmd.Flags().StringVar(&group, "group", "", "Grouping column for per-level tables")
	cmd.Flags().IntVar(&decimals, "decimals", cfg.Output.Decimals, "Display decimals")
	cmd.Flags().StringVar(&title, "title", "", "Table title")
	_ = cmd.MarkFlagRequired("vars")

	return cmd
}

func newCorrCmd(reader ports.TableProvider, svc *app.AnalysisService, cfg *config.Config) *cobra.Command {
	var vars, title string
	var decimals int

	cmd := &cobra.Command{
		Use:   "corr [file]",
		Short: "Pairwise correlation matrix with significance stars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnostic(cmd, reader, svc, args[0], model.Spec{
				Method:     model.MethodCorr,
				Regressors: splitList(vars),
				Decimals:   decimals,
				Title:      title,
			})
		},
	}

	cmd.Flags().StringVar(&vars, "vars", "", "Comma-separated variables")
	cmd.Flags().IntVar(&decimals, "decimals", cfg.Output.Decimals, "Display decimals")
	cmd.Flags().StringVar(&title, "title", "", "Table title")
	_ = cmd.MarkFlagRequired("vars")

	return cmd
}

func newVIFCmd(reader ports.TableProvider, svc *app.AnalysisService, cfg *config.Config) *cobra.Command {
	var vars, title string
	var decimals int

	cmd := &cobra.Command{
		Use:   "vif [file]",
		Short: "Variance inflation factors for a regressor set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnostic(cmd, reader, svc, args[0], model.Spec{
				Method:     model.MethodVIF,
				Regressors: splitList(vars),
				Decimals:   decimals,
				Title:      title,
			})
		},
	}

	cmd.Flags().StringVar(&vars, "vars", "", "Comma-separated variables")
	cmd.Flags().IntVar(&decimals, "decimals", cfg.Output.Decimals, "Display decimals")
	cmd.Flags().StringVar(&title, "title", "", "Table title")
	_ = cmd.MarkFlagRequired("vars")

	return cmd
}

func newFreqCmd(reader ports.TableProvider, svc *app.AnalysisService, cfg *config.Config) *cobra.Command {
	var vars, title string
	var decimals int
	var merge bool

	cmd := &cobra.Command{
		Use:   "freq [file]",
		Short: "Frequency tables, independent or merged with subtotals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnostic(cmd, reader, svc, args[0], model.Spec{
				Method:     model.MethodFreq,
				Regressors: splitList(vars),
				MergeFreq:  merge,
				Decimals:   decimals,
				Title:      title,
			})
		},
	}

	cmd.Flags().StringVar(&vars, "vars", "", "Comma-separated variables")
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge all variables into one table with subtotals")
	cmd.Flags().IntVar(&decimals, "decimals", cfg.Output.Decimals, "Display decimals")
	cmd.Flags().StringVar(&title, "title", "", "Table title")
	_ = cmd.MarkFlagRequired("vars")

	return cmd
}

func newFTestCmd(reader ports.TableProvider, svc *app.AnalysisService, cfg *config.Config) *cobra.Command {
	var response, regressors, entity, timeVar string
	var decimals int

	cmd := &cobra.Command{
		Use:   "ftest [file]",
		Short: "F test of fixed effects against pooled OLS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := reader.Load(args[0])
			if err != nil {
				return err
			}
			res, err := svc.FTest(frame, response, splitList(regressors), entity, timeVar, decimals)
			if err != nil {
				return err
			}
			renderFTest(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&response, "y", "", "Dependent variable")
	cmd.Flags().StringVar(&regressors, "x", "", "Comma-separated independent variables")
	cmd.Flags().StringVar(&entity, "entity", "", "Entity identifier column")
	cmd.Flags().StringVar(&timeVar, "time", "", "Time identifier column")
	cmd.Flags().IntVar(&decimals, "decimals", cfg.Output.Decimals, "Display decimals")
	_ = cmd.MarkFlagRequired("y")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}

func newHausmanCmd(reader ports.TableProvider, svc *app.AnalysisService, cfg *config.Config) *cobra.Command {
	var response, regressors, entity, timeVar string
	var decimals int
	var sigmamore bool

	cmd := &cobra.Command{
		Use:   "hausman [file]",
		Short: "Hausman test of fixed against random effects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := reader.Load(args[0])
			if err != nil {
				return err
			}
			res, err := svc.Hausman(frame, response, splitList(regressors), entity, timeVar, decimals, sigmamore)
			if err != nil {
				return err
			}
			renderHausman(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&response, "y", "", "Dependent variable")
	cmd.Flags().StringVar(&regressors, "x", "", "Comma-separated independent variables")
	cmd.Flags().StringVar(&entity, "entity", "", "Entity identifier column")
	cmd.Flags().StringVar(&timeVar, "time", "", "Time identifier column")
	cmd.Flags().IntVar(&decimals, "decimals", cfg.Output.Decimals, "Display decimals")
	cmd.Flags().BoolVar(&sigmamore, "sigmamore", false, "Rescale both covariances by the pooled error variance")
	_ = cmd.MarkFlagRequired("y")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}

// runDiagnostic loads the file, runs the request, and renders the report.
func runDiagnostic(cmd *cobra.Command, reader ports.TableProvider, svc *app.AnalysisService, path string, spec model.Spec) error {
	frame, err := reader.Load(path)
	if err != nil {
		return err
	}
	out, err := svc.Run(frame, spec)
	if err != nil {
		return err
	}
	renderReport(cmd.OutOrStdout(), out.Report)
	return nil
}

// splitList turns a comma-separated flag value into trimmed names.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseCustomRows parses repeated Label=Value flags.
func parseCustomRows(raw []string) ([]model.CustomRow, error) {
	var out []model.CustomRow
	for _, entry := range raw {
		label, value, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("custom row %q must be Label=Value", entry)
		}
		out = append(out, model.CustomRow{Label: strings.TrimSpace(label), Value: strings.TrimSpace(value)})
	}
	return out, nil
}
