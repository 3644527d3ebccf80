package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kanjimerge/internal/compiler"
	"github.com/roach88/kanjimerge/internal/ir"
	"github.com/roach88/kanjimerge/internal/recipe"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// CheckSummary describes a valid game definition.
type CheckSummary struct {
	Name      string                     `json:"name"`
	Rows      int                        `json:"rows"`
	Cols      int                        `json:"cols"`
	Pool      []ir.Symbol                `json:"pool"`
	Recipes   int                        `json:"recipes"`
	Terminals []ir.Symbol                `json:"terminals"`
	Triples   int                        `json:"triples"`
	Materials []ir.Symbol                `json:"materials"`
	Warnings  []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <game>",
		Short: "Compile and validate a game definition",
		Long: `Compile a CUE game definition and report every problem found.

<game> is a .cue file or a directory holding one CUE package. Recipe
materials that no pool symbol or rule can produce are reported as
warnings; the game still runs.

Exit codes:
  0 - Valid (warnings allowed)
  2 - Compile or validation errors

Examples:
  kanjimerge check ./configs/kanji.cue
  kanjimerge check ./configs --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := LoadGame(path)
	if err != nil {
		_ = formatter.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "compile failed", err)
	}
	formatter.VerboseLog("compiled %s", path)

	var problems, warnings []compiler.ValidationError
	for _, v := range compiler.Validate(*spec) {
		if compiler.IsAdvisory(v.Code) {
			warnings = append(warnings, v)
			continue
		}
		problems = append(problems, v)
	}

	if len(problems) > 0 {
		if opts.Format == "json" {
			_ = formatter.Error(problems[0].Code,
				fmt.Sprintf("%d validation errors", len(problems)), problems)
		} else {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✗ %s: %d validation errors\n", path, len(problems))
			for _, p := range problems {
				fmt.Fprintf(w, "  %s\n", p.Error())
			}
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("%d validation errors", len(problems)))
	}

	catalog, err := recipe.New(spec.Recipes, spec.Triples, spec.Terminals)
	if err != nil {
		_ = formatter.Error(compiler.ErrRecipeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid recipe table", err)
	}

	summary := CheckSummary{
		Name:      spec.Name,
		Rows:      spec.Rows,
		Cols:      spec.Cols,
		Pool:      spec.Pool,
		Recipes:   len(catalog.Recipes()),
		Terminals: catalog.Terminals(),
		Triples:   len(catalog.Triples()),
		Materials: catalog.Materials(),
		Warnings:  warnings,
	}

	if opts.Format == "json" {
		return formatter.Success(summary)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %s is valid\n", path)
	fmt.Fprintf(w, "  Name:      %s\n", summary.Name)
	fmt.Fprintf(w, "  Board:     %dx%d\n", summary.Rows, summary.Cols)
	fmt.Fprintf(w, "  Pool:      %s\n", ir.FormatRow(summary.Pool))
	fmt.Fprintf(w, "  Recipes:   %d\n", summary.Recipes)
	fmt.Fprintf(w, "  Triples:   %d\n", summary.Triples)
	fmt.Fprintf(w, "  Terminals: %s\n", ir.FormatRow(summary.Terminals))
	fmt.Fprintf(w, "  Materials: %s\n", ir.FormatRow(summary.Materials))
	for _, warn := range warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn.Error())
	}
	return nil
}
