package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/augurhq/augur/internal/engine"
	"github.com/augurhq/augur/internal/output"
	"github.com/augurhq/augur/internal/progress"
	"github.com/augurhq/augur/internal/report"
	"github.com/augurhq/augur/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze [path...]",
	Aliases: []string{"a"},
	Short:   "Run all analyzers and report findings",
	RunE:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSlice("analyzers", nil, "Analyzers to run (default: all)")
	analyzeCmd.Flags().String("baseline", "", "Baseline file to compare against")
	analyzeCmd.Flags().Bool("update-baseline", false, "Replace the baseline with this run's findings")
	analyzeCmd.Flags().StringP("output", "o", "", "Directory to write the report into")
	analyzeCmd.Flags().StringP("format", "f", "", "Output format: text, json, markdown")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	analyzerIDs, _ := cmd.Flags().GetStringSlice("analyzers")
	baselinePath, _ := cmd.Flags().GetString("baseline")
	updateBaseline, _ := cmd.Flags().GetBool("update-baseline")
	outDir, _ := cmd.Flags().GetString("output")
	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag == "" {
		formatFlag = cfg.Output.Format
	}
	format := output.ParseFormat(formatFlag)

	eng, err := engine.New(cfg, analyzerIDs)
	if err != nil {
		return err
	}

	// Fail on an unwritable output directory before spending any
	// analysis time.
	dest := ""
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return &engine.ConfigError{Msg: fmt.Sprintf("output directory %q is not writable", outDir), Err: err}
		}
		dest = filepath.Join(outDir, reportFilename(format))
	}

	spinner := progress.NewSpinner("Analyzing...")
	result, err := eng.Run(cmd.Context(), engine.Options{
		Paths:          getPaths(args),
		BaselinePath:   baselinePath,
		UpdateBaseline: updateBaseline,
		OnProgress:     spinner.Tick,
	})
	spinner.FinishSuccess()
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(format, dest, cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	switch format {
	case output.FormatJSON:
		if err := formatter.Output(result); err != nil {
			return err
		}
	case output.FormatMarkdown:
		if err := report.Render(formatter.Writer(), result); err != nil {
			return err
		}
	default:
		if err := printRunSummary(formatter, result); err != nil {
			return err
		}
	}

	if dest != "" {
		color.Green("Report written to %s", dest)
	}
	return nil
}

func reportFilename(format output.Format) string {
	switch format {
	case output.FormatJSON:
		return "report.json"
	case output.FormatMarkdown:
		return "report.md"
	default:
		return "report.txt"
	}
}

func printRunSummary(formatter *output.Formatter, result *engine.Result) error {
	var rows [][]string
	for _, f := range result.Findings {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", f.File, f.Line),
			colorPriority(formatter.Colored(), f.Priority),
			string(f.Category),
			truncate(f.Title, 60),
		})
	}

	table := output.NewTable(
		"Findings",
		[]string{"Location", "Priority", "Category", "Title"},
		rows,
		[]string{
			fmt.Sprintf("Total: %d", result.Metrics.TotalFindings),
			fmt.Sprintf("Critical: %d", result.Metrics.ByPriority[models.PriorityCritical]),
			fmt.Sprintf("High: %d", result.Metrics.ByPriority[models.PriorityHigh]),
			fmt.Sprintf("Files: %d", result.FilesAnalyzed),
		},
		result,
	)
	if err := formatter.Output(table); err != nil {
		return err
	}

	w := formatter.Writer()

	if cmp := result.Comparison; cmp != nil {
		fmt.Fprintf(w, "\nBaseline: %d new, %d resolved\n", len(cmp.NewIDs), len(cmp.ResolvedIDs))
	}

	if result.FilesSkipped > 0 {
		if formatter.Colored() {
			color.Yellow("\nSkipped %d of %d files:", result.FilesSkipped, result.FilesDiscovered)
		} else {
			fmt.Fprintf(w, "\nSkipped %d of %d files:\n", result.FilesSkipped, result.FilesDiscovered)
		}
		for _, d := range result.Diagnostics {
			fmt.Fprintf(w, "  - %s\n", d)
		}
	}

	return nil
}

func colorPriority(colored bool, p models.Priority) string {
	if !colored {
		return string(p)
	}
	switch p {
	case models.PriorityCritical, models.PriorityHigh:
		return color.RedString(string(p))
	case models.PriorityMedium:
		return color.YellowString(string(p))
	default:
		return color.GreenString(string(p))
	}
}
