// Package scanner discovers source files and derives their metadata.
package scanner

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/augurhq/augur/pkg/config"
	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// declarationScanLimit bounds how many leading lines are read when
// extracting a package/namespace declaration.
const declarationScanLimit = 30

// Scanner finds source files in a directory and classifies them.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// New creates a new file scanner.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// Discover recursively walks root and returns metadata for every source
// file that survives the exclusion rules. Unreadable entries become
// diagnostics; discovery never aborts for one bad file.
func (s *Scanner) Discover(root string) ([]models.FileInfo, []models.Diagnostic, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		fi, diag := s.classify(absRoot, filepath.Base(absRoot))
		if diag != nil {
			return nil, []models.Diagnostic{*diag}, nil
		}
		if fi == nil {
			return nil, nil, nil
		}
		return []models.FileInfo{*fi}, nil, nil
	}

	s.loadExcludePatterns(absRoot)

	files := make([]models.FileInfo, 0, 256)
	var diags []models.Diagnostic

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			diags = append(diags, models.Diagnostic{
				Stage:   models.StageDiscovery,
				Path:    path,
				Message: err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, _ := filepath.Rel(absRoot, path)

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.isExcluded(relPath, false) {
			return nil
		}
		if parser.DetectLanguage(path) == parser.LangUnknown {
			return nil
		}
		if max := s.config.Analysis.MaxFileSize; max > 0 {
			if fi, err := d.Info(); err == nil && fi.Size() > max {
				return nil
			}
		}

		fi, diag := s.classify(path, relPath)
		if diag != nil {
			diags = append(diags, *diag)
			return nil
		}
		if fi != nil {
			files = append(files, *fi)
		}
		return nil
	})

	return files, diags, walkErr
}

// classify builds the FileInfo for one candidate file.
func (s *Scanner) classify(path, relPath string) (*models.FileInfo, *models.Diagnostic) {
	pkg, err := readDeclaration(path)
	if err != nil {
		return nil, &models.Diagnostic{
			Stage:   models.StageDiscovery,
			Path:    relPath,
			Message: err.Error(),
		}
	}

	fi := &models.FileInfo{
		Path:     path,
		RelPath:  filepath.ToSlash(relPath),
		Layer:    s.config.LayerFor(relPath),
		IsTest:   IsTestFile(relPath),
		Package:  pkg,
		Language: string(parser.DetectLanguage(path)),
	}
	if fi.IsTest {
		fi.Layer = models.LayerTest
	}
	return fi, nil
}

// loadExcludePatterns combines config patterns with .gitignore files.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fsys := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fsys, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	s.matchers = nil
	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}

	pathParts := strings.Split(path, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// findGitRoot finds the enclosing git repository root, or "" if none.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

var declarationRe = regexp.MustCompile(`^\s*(?:package|namespace|module)\s+([A-Za-z_][\w.:\\]*)`)

// readDeclaration scans the first lines of a file for a package or
// namespace declaration. This is a cheap heuristic, not a parse.
func readDeclaration(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for i := 0; i < declarationScanLimit && sc.Scan(); i++ {
		if m := declarationRe.FindStringSubmatch(sc.Text()); m != nil {
			return strings.TrimSuffix(m[1], ";"), nil
		}
	}
	return "", sc.Err()
}

var testFileRe = regexp.MustCompile(
	`(_test\.\w+$|_spec\.rb$|^test_.*\.py$|\.(test|spec)\.[jt]sx?$|Test\.(java|cs)$|Tests\.(java|cs)$)`)

// IsTestFile reports whether a relative path names a test by directory
// segment or filename convention.
func IsTestFile(relPath string) bool {
	slash := filepath.ToSlash(relPath)
	for _, part := range strings.Split(filepath.Dir(slash), "/") {
		switch strings.ToLower(part) {
		case "test", "tests", "spec", "specs", "__tests__", "androidtest", "testdata":
			return true
		}
	}
	return testFileRe.MatchString(filepath.Base(slash))
}
