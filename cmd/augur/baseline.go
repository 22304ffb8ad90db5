package main

import (
	"fmt"
	"sort"

	"github.com/augurhq/augur/internal/baseline"
	"github.com/augurhq/augur/internal/engine"
	"github.com/augurhq/augur/internal/output"
	"github.com/augurhq/augur/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect and compare saved baselines",
}

var baselineShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Show the contents of a saved baseline",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBaselineShow,
}

var baselineDiffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Diff two saved baselines",
	Args:  cobra.ExactArgs(2),
	RunE:  runBaselineDiff,
}

func init() {
	baselineShowCmd.Flags().StringP("format", "f", "text", "Output format: text, json, markdown")
	baselineDiffCmd.Flags().StringP("format", "f", "text", "Output format: text, json, markdown")

	baselineCmd.AddCommand(baselineShowCmd)
	baselineCmd.AddCommand(baselineDiffCmd)
	rootCmd.AddCommand(baselineCmd)
}

// loadBaselineFile loads a baseline that must exist; the show and diff
// commands have nothing to do against a missing file.
func loadBaselineFile(path string) (*models.Baseline, error) {
	b, err := baseline.Load(path)
	if err != nil {
		return nil, &engine.ConfigError{Msg: "unusable baseline", Err: err}
	}
	if b == nil {
		return nil, fmt.Errorf("no baseline found at %q", path)
	}
	return b, nil
}

func runBaselineShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.Baseline.Path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no baseline path given and none configured")
	}

	b, err := loadBaselineFile(path)
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	formatter, err := output.NewFormatter(output.ParseFormat(formatFlag), "", cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		return formatter.Output(b)
	}

	var rows [][]string
	if len(b.Findings) > 0 {
		for _, f := range b.Findings {
			rows = append(rows, []string{
				f.ID,
				fmt.Sprintf("%s:%d", f.File, f.Line),
				colorPriority(formatter.Colored(), f.Priority),
				truncate(f.Title, 60),
			})
		}
	} else {
		for _, id := range b.FindingIDs {
			rows = append(rows, []string{id, "", "", ""})
		}
	}

	table := output.NewTable(
		fmt.Sprintf("Baseline %s (created %s)", path, b.CreatedAt.Format("2006-01-02 15:04:05")),
		[]string{"ID", "Location", "Priority", "Title"},
		rows,
		[]string{
			fmt.Sprintf("Findings: %d", len(b.FindingIDs)),
			fmt.Sprintf("Files: %d", b.Metrics.TotalFiles),
			fmt.Sprintf("Critical: %d", b.Metrics.ByPriority[models.PriorityCritical]),
			fmt.Sprintf("Avg Complexity: %.1f", b.Metrics.AvgComplexity),
		},
		b,
	)
	return formatter.Output(table)
}

func runBaselineDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	prev, err := loadBaselineFile(args[0])
	if err != nil {
		return err
	}
	next, err := loadBaselineFile(args[1])
	if err != nil {
		return err
	}

	cmp := baseline.Diff(prev, next)

	formatFlag, _ := cmd.Flags().GetString("format")
	formatter, err := output.NewFormatter(output.ParseFormat(formatFlag), "", cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		return formatter.Output(cmp)
	}

	w := formatter.Writer()
	if formatter.Colored() {
		color.Cyan("Baseline diff: %s -> %s", args[0], args[1])
	} else {
		fmt.Fprintf(w, "Baseline diff: %s -> %s\n", args[0], args[1])
	}
	fmt.Fprintf(w, "\nNew findings: %d\n", len(cmp.NewIDs))
	for _, id := range cmp.NewIDs {
		fmt.Fprintf(w, "  + %s\n", id)
	}
	fmt.Fprintf(w, "\nResolved findings: %d\n", len(cmp.ResolvedIDs))
	for _, id := range cmp.ResolvedIDs {
		fmt.Fprintf(w, "  - %s\n", id)
	}

	names := make([]string, 0, len(cmp.Deltas))
	for name := range cmp.Deltas {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "\nMetric deltas:\n")
	for _, name := range names {
		d := cmp.Deltas[name]
		if d.Defined {
			fmt.Fprintf(w, "  %s: %.2f -> %.2f (%+.1f%%)\n", name, d.Baseline, d.Current, d.Ratio*100)
		} else {
			fmt.Fprintf(w, "  %s: %.2f -> %.2f (n/a)\n", name, d.Baseline, d.Current)
		}
	}

	return nil
}
