package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ConfigNotFoundError is returned when a scenario references a game config
// that doesn't exist.
type ConfigNotFoundError struct {
	Scenario     string
	ConfigPath   string
	ResolvedPath string
}

// Error implements the error interface.
func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf(
		"scenario %q references config file %q which does not exist (resolved to: %s)",
		e.Scenario,
		e.ConfigPath,
		e.ResolvedPath,
	)
}

// FindScenarios returns every .yaml/.yml file under dir, sorted. A non-empty
// filter is a glob matched against the file name without extension.
// Files under golden/ directories are skipped.
func FindScenarios(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	files := []string{}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if ok, _ := filepath.Match(filter, name); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// SuiteResult summarizes a run over a directory of scenarios.
type SuiteResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Failures []SuiteFailure `json:"failures,omitempty"`
}

// SuiteFailure records one scenario that failed to load, run or pass.
type SuiteFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// RunSuite loads and runs every scenario FindScenarios returns.
// Golden traces are not compared; callers wanting that use RunWithGolden
// or Snapshot.
func RunSuite(dir, filter string) (*SuiteResult, error) {
	paths, err := FindScenarios(dir, filter)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{Failures: []SuiteFailure{}}
	for _, path := range paths {
		result.Total++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.fail(path, fmt.Sprintf("failed to load scenario: %v", err))
			continue
		}

		run, err := Run(scenario)
		if err != nil {
			result.fail(path, fmt.Sprintf("scenario execution failed: %v", err))
			continue
		}
		if !run.Pass {
			result.fail(path, fmt.Sprintf("scenario assertions failed: %v", run.Errors))
			continue
		}
		result.Passed++
	}
	return result, nil
}

func (r *SuiteResult) fail(path, msg string) {
	r.Failed++
	r.Failures = append(r.Failures, SuiteFailure{Path: path, Error: msg})
}
