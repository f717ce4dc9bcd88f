package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/cli"
	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/rulepack"
)

var lintFlags struct {
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [PATH...]",
	Short: "Validate rule pack files",
	Long: `Validate rule pack files without running a scan.

Each file is checked in the same order the catalog loads it:
  - YAML syntax and pack format version
  - Rule structure (id, condition, failure code)
  - Condition and pass_when trees, including expressions
  - Rule IDs that collide with other packs or the built-in library

Without arguments the packs configured under rules.packs are linted.

Examples:
  # Lint a directory
  lumen lint rules/

  # Strict mode (warnings as errors)
  lumen lint --strict rules/links.yaml

  # JSON output for CI/CD
  lumen lint --format json rules/`,
	RunE: lintPacks,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "f", "text", "output format: text, json")
}

// LintResult is the validation result for a single pack file.
type LintResult struct {
	File     string      `json:"file"`
	Valid    bool        `json:"valid"`
	Rules    int         `json:"rules"`
	Errors   []LintIssue `json:"errors,omitempty"`
	Warnings []LintIssue `json:"warnings,omitempty"`
}

// LintIssue is a single error or warning.
type LintIssue struct {
	Line    int    `json:"line,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// lintReport renders lint results as text or JSON.
type lintReport []*LintResult

func (r lintReport) RenderText(w io.Writer) error {
	for _, res := range r {
		if res.Valid {
			fmt.Fprintf(w, "✓ %s (%d rules)\n", res.File, res.Rules)
		} else {
			fmt.Fprintf(w, "✗ %s\n", res.File)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
		for _, warn := range res.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
	}
	return nil
}

func (i LintIssue) String() string {
	s := i.Message
	if i.Field != "" {
		s = i.Field + ": " + s
	}
	if i.Rule != "" {
		s = fmt.Sprintf("rule %s: %s", i.Rule, s)
	}
	if i.Line > 0 {
		s = fmt.Sprintf("line %d: %s", i.Line, s)
	}
	return s
}

func lintPacks(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(lintFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return fmt.Errorf("lint does not support csv output")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Rules.Packs
	}
	if len(paths) == 0 {
		return fmt.Errorf("no rule packs given and none configured under rules.packs")
	}

	report := lint(paths, &cfg.Rules)
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	invalid := 0
	for _, res := range report {
		if !res.Valid || (lintFlags.strict && len(res.Warnings) > 0) {
			invalid++
		}
	}
	if invalid > 0 {
		return cli.NewExitError(cli.ExitFindings, "%d of %d rule pack files invalid", invalid, len(report))
	}
	return nil
}

// lint loads, compiles and builds the packs under paths and attributes
// every problem to the file it came from.
func lint(paths []string, cfg *config.RulesConfig) lintReport {
	loader := rulepack.NewLoader(rulepack.LoaderConfigFrom(cfg))
	opts := catalog.BuildOptions{Builtin: cfg.Builtin, Disabled: cfg.Disabled}

	byFile := make(map[string]*LintResult)
	result := func(file string) *LintResult {
		r, ok := byFile[file]
		if !ok {
			r = &LintResult{File: file, Valid: true}
			byFile[file] = r
		}
		return r
	}

	packs, loadErr := loader.LoadPaths(paths)
	for _, p := range packs {
		result(p.Source).Rules = len(p.Rules)
	}
	for _, err := range flatten(loadErr) {
		file, issue := describe(err)
		if file == "" {
			file = "-"
		}
		r := result(file)
		r.Valid = false
		r.Errors = append(r.Errors, issue)
	}

	compiled, compileErr := rulepack.Compile(packs)
	for _, err := range flatten(compileErr) {
		file, issue := describe(err)
		r := result(file)
		r.Valid = false
		r.Errors = append(r.Errors, issue)
	}

	if compileErr == nil && loadErr == nil {
		built, err := catalog.Build(opts, compiled)
		if err != nil {
			file, issue := describe(err)
			r := result(file)
			r.Valid = false
			r.Errors = append(r.Errors, issue)
		} else {
			for _, id := range built.UnknownDisabled {
				for _, r := range byFile {
					r.Warnings = append(r.Warnings, LintIssue{Rule: id, Message: "disabled rule does not exist"})
				}
			}
		}
	}

	report := make(lintReport, 0, len(byFile))
	for _, r := range byFile {
		report = append(report, r)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].File < report[j].File })
	return report
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	var list *rulepack.ErrorList
	if !errors.As(err, &list) {
		return []error{err}
	}
	var out []error
	for _, e := range list.Errors {
		out = append(out, flatten(e)...)
	}
	return out
}

// describe extracts the file and location of a pack error.
func describe(err error) (string, LintIssue) {
	var (
		packErr  *rulepack.PackError
		parseErr *rulepack.ParseError
		loadErr  *rulepack.LoadError
	)
	switch {
	case errors.As(err, &packErr):
		return packErr.Source, LintIssue{Line: packErr.Line, Rule: packErr.RuleID, Field: packErr.Field, Message: withCause(packErr.Message, packErr.Cause)}
	case errors.As(err, &parseErr):
		return parseErr.FilePath, LintIssue{Line: parseErr.Line, Message: withCause(parseErr.Message, parseErr.Cause)}
	case errors.As(err, &loadErr):
		return loadErr.FilePath, LintIssue{Message: withCause(loadErr.Message, loadErr.Cause)}
	default:
		return "", LintIssue{Message: err.Error()}
	}
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return msg + ": " + cause.Error()
}
