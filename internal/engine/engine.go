// Package engine orchestrates the analysis pipeline: discovery,
// parallel per-file analysis, aggregation, baseline diffing.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/augurhq/augur/internal/aggregate"
	"github.com/augurhq/augur/internal/baseline"
	"github.com/augurhq/augur/internal/cache"
	"github.com/augurhq/augur/internal/fileproc"
	"github.com/augurhq/augur/pkg/analyzer"
	"github.com/augurhq/augur/pkg/config"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
	"github.com/augurhq/augur/pkg/scanner"
)

// ConfigError is a fatal configuration problem detected before any
// analysis work starts.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Options selects what a run analyzes and how its outcome is persisted.
type Options struct {
	// Paths are the roots to analyze; empty means the current directory.
	Paths []string
	// BaselinePath overrides the configured baseline location.
	BaselinePath string
	// UpdateBaseline replaces the baseline with this run's snapshot.
	UpdateBaseline bool
	// OnProgress is invoked once per processed file.
	OnProgress func()
}

// Result is everything one run produced.
type Result struct {
	Findings    []models.Finding       `json:"findings"`
	Metrics     models.AnalysisMetrics `json:"metrics"`
	Diagnostics []models.Diagnostic    `json:"diagnostics,omitempty"`
	Comparison  *models.Comparison     `json:"comparison,omitempty"`
	Baseline    *models.Baseline       `json:"-"`

	FilesDiscovered int `json:"files_discovered"`
	FilesAnalyzed   int `json:"files_analyzed"`
	FilesSkipped    int `json:"files_skipped"`
}

// Engine runs the analysis pipeline. It owns all per-run data; stages
// receive immutable values and never mutate each other's inputs.
type Engine struct {
	config    *config.Config
	analyzers []analyzer.Analyzer
	order     map[string]int
	cache     *cache.Cache
}

// New builds an engine for the selected analyzer set. An unknown
// analyzer id is fatal before any work begins.
func New(cfg *config.Config, analyzerIDs []string) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	all := analyzer.Default(cfg)
	ids := analyzerIDs
	if len(ids) == 0 {
		ids = cfg.Analysis.Analyzers
	}
	selected, err := analyzer.Select(all, ids)
	if err != nil {
		return nil, &ConfigError{Msg: "invalid analyzer selection", Err: err}
	}

	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		// A broken cache directory degrades to an uncached run.
		c, _ = cache.New("", 0, false)
	}

	return &Engine{
		config:    cfg,
		analyzers: selected,
		order:     analyzer.Order(all),
		cache:     c,
	}, nil
}

// Analyzers returns the ids of the analyzers this engine will run.
func (e *Engine) Analyzers() []string { return analyzer.IDs(e.analyzers) }

// AnalyzerOrder exposes the registry order for aggregation tie-breaks.
func (e *Engine) AnalyzerOrder() map[string]int { return e.order }

// fileOutcome is the unit of work that flows from workers back to the
// collecting stage. Workers never touch shared state directly.
type fileOutcome struct {
	Findings    []models.Finding    `json:"findings"`
	Samples     aggregate.Samples   `json:"samples"`
	Diagnostics []models.Diagnostic `json:"-"`
	Analyzed    bool                `json:"-"`
}

// Run executes the full pipeline. File-scoped failures become
// diagnostics on the result; only configuration problems return errors.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	// Discovery. An invalid root is fatal, an unreadable file is not.
	var files []models.FileInfo
	var diags []models.Diagnostic
	scan := scanner.New(e.config)
	for _, root := range paths {
		found, scanDiags, err := scan.Discover(root)
		if err != nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("invalid path %q", root), Err: err}
		}
		files = append(files, found...)
		diags = append(diags, scanDiags...)
	}

	var mu sync.Mutex
	addDiags := func(ds ...models.Diagnostic) {
		mu.Lock()
		diags = append(diags, ds...)
		mu.Unlock()
	}

	cacheSuffix := "|" + strings.Join(e.Analyzers(), ",")

	outcomes := fileproc.MapFiles(ctx, files, e.config.Analysis.Workers,
		func(psr *parser.Parser, file models.FileInfo) (fileOutcome, error) {
			return e.analyzeFile(psr, file, cacheSuffix)
		},
		opts.OnProgress,
		func(file models.FileInfo, err error) {
			addDiags(models.Diagnostic{
				Stage:   models.StageParse,
				Path:    file.RelPath,
				Message: err.Error(),
			})
		})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Collect. Completion order is arbitrary; the sort below is the
	// single place output order is established.
	var all []models.Finding
	var samples aggregate.Samples
	analyzed := 0
	for _, o := range outcomes {
		all = append(all, o.Findings...)
		samples.Append(o.Samples)
		diags = append(diags, o.Diagnostics...)
		if o.Analyzed {
			analyzed++
		}
	}

	findings := aggregate.Deduplicate(all, e.order)
	aggregate.Sort(findings)
	metrics := aggregate.ComputeMetrics(findings, analyzed, samples)

	result := &Result{
		Findings:        findings,
		Metrics:         metrics,
		Diagnostics:     diags,
		FilesDiscovered: len(files),
		FilesAnalyzed:   analyzed,
		FilesSkipped:    len(files) - analyzed,
	}

	// Baseline: load, compare, optionally replace.
	basePath := opts.BaselinePath
	if basePath == "" {
		basePath = e.config.Baseline.Path
	}
	if basePath != "" {
		base, err := baseline.Load(basePath)
		if err != nil {
			return nil, &ConfigError{Msg: "unusable baseline", Err: err}
		}
		if base != nil {
			cmp := baseline.Compare(findings, metrics, base)
			result.Comparison = &cmp
			result.Baseline = base
		}
		if opts.UpdateBaseline {
			if err := baseline.Save(basePath, findings, metrics); err != nil {
				return nil, fmt.Errorf("failed to save baseline: %w", err)
			}
		}
	}

	return result, nil
}

// analyzeFile runs every applicable analyzer over one file. Analyzer
// failures skip that analyzer for that file only.
func (e *Engine) analyzeFile(psr *parser.Parser, file models.FileInfo, cacheSuffix string) (fileOutcome, error) {
	source, err := os.ReadFile(file.Path)
	if err != nil {
		return fileOutcome{}, err
	}

	hash := cache.HashBytes(source)
	cacheKey := file.RelPath + cacheSuffix
	if data, ok := e.cache.Get(cacheKey, hash); ok {
		var cached fileOutcome
		if json.Unmarshal(data, &cached) == nil {
			cached.Analyzed = true
			return cached, nil
		}
	}

	result, err := psr.Parse(source, parser.Language(file.Language), file.Path)
	if err != nil {
		return fileOutcome{}, err
	}

	outcome := fileOutcome{Analyzed: true}
	for _, a := range e.analyzers {
		if !a.AppliesTo(file) {
			continue
		}
		findings, err := a.Analyze(file, result)
		if err != nil {
			outcome.Diagnostics = append(outcome.Diagnostics, models.Diagnostic{
				Stage:      models.StageAnalyzer,
				Path:       file.RelPath,
				AnalyzerID: a.ID(),
				Message:    err.Error(),
			})
			continue
		}
		outcome.Findings = append(outcome.Findings, findings...)
	}

	outcome.Samples = collectSamples(result)

	if data, err := json.Marshal(outcome); err == nil {
		_ = e.cache.Set(cacheKey, hash, data)
	}

	return outcome, nil
}

// collectSamples measures each declaration for the run averages. The
// samples come from the tree directly so a finding-free file still
// contributes to the metrics.
func collectSamples(result *parser.ParseResult) aggregate.Samples {
	var s aggregate.Samples
	for _, fn := range parser.GetFunctions(result) {
		s.FunctionLength = append(s.FunctionLength, float64(fn.Lines()))
		if fn.Body != nil {
			s.Complexity = append(s.Complexity, float64(analyzer.Cyclomatic(fn.Body, result.Source, result.Language)))
		}
	}
	for _, tn := range parser.GetTypes(result) {
		s.TypeLength = append(s.TypeLength, float64(tn.Lines()))
	}
	return s
}
