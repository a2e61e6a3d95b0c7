// Package cmd implements the b2c CLI driver (spec §6): the
// source-emitting compiler. Unlike b2dump's individual
// --enable-<pass>/--disable-<pass> boolean flags, b2c takes the pass
// name as the value of a repeatable --enable-pass/--disable-pass flag,
// matching spec §6's literal invocation grammar.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcuelenaere/b2/backend/source"
	"github.com/mcuelenaere/b2/config"
	"github.com/mcuelenaere/b2/errs"
	"github.com/mcuelenaere/b2/internal/pipeline"
)

// errFailed is returned once the real diagnostic has already been
// written to stderr by reportAndFail.
var errFailed = errors.New("b2c: failed")

var (
	enablePass           []string
	disablePass          []string
	listPasses           bool
	templateBasepath     string
	enableUndefinedCheck bool
	configPath           string
	pkgName              string
	funcName             string
)

var rootCmd = &cobra.Command{
	Use:   "b2c <template>",
	Short: "Compile a b2 template to standalone Go renderer source",
	Long: `b2c parses a template, runs the selected rewrite passes over it,
and emits Go source defining a self-contained render function on
stdout. The emitted package depends only on backend/source/runtime and
the ast package's operator constants, never on the compiler itself.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runCompile,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringArrayVar(&enablePass, "enable-pass", nil, "enable the named pass (repeatable)")
	rootCmd.Flags().StringArrayVar(&disablePass, "disable-pass", nil, "disable the named pass (repeatable)")
	rootCmd.Flags().BoolVar(&listPasses, "list-passes", false, "list known pass names and exit")
	rootCmd.Flags().StringVar(&templateBasepath, "template-basepath", ".", "include search root")
	rootCmd.Flags().BoolVar(&enableUndefinedCheck, "enable-undefined-check", false,
		"substitute an empty string for an unbound variable instead of failing the render")
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.Flags().StringVar(&pkgName, "pkg", "main", "package name of the emitted source")
	rootCmd.Flags().StringVar(&funcName, "func", "Render", "name of the emitted render function")
}

// Execute runs the b2c root command.
func Execute() error {
	return rootCmd.Execute()
}

func runCompile(cmd *cobra.Command, args []string) error {
	if listPasses {
		for _, name := range pipeline.Names {
			fmt.Println(name)
		}
		return nil
	}
	if len(args) != 1 {
		return errors.New("b2c: exactly one <template> argument is required")
	}

	for _, name := range enablePass {
		if err := pipeline.ValidateName(name); err != nil {
			return reportAndFail(err)
		}
	}
	for _, name := range disablePass {
		if err := pipeline.ValidateName(name); err != nil {
			return reportAndFail(err)
		}
	}

	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}

	opts := &pipeline.Options{
		TemplateBasepath: templateBasepath,
		Enabled:          map[string]bool{},
		Default:          true,
	}
	for _, name := range enablePass {
		opts.Enabled[name] = true
	}
	for _, name := range disablePass {
		opts.Enabled[name] = false
	}
	opts.Merge(cfg)
	if !cmd.Flags().Changed("template-basepath") && cfg.TemplateBasepath != "" {
		opts.TemplateBasepath = cfg.TemplateBasepath
	}

	if !cmd.Flags().Changed("enable-undefined-check") {
		enableUndefinedCheck = cfg.EnableUndefinedCheck
	}

	templatePath := args[0]
	src, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", templatePath, err)
	}

	tree, err := pipeline.Parse(string(src), templatePath)
	if err != nil {
		return reportAndFail(err)
	}

	mgr := pipeline.Build(opts)
	tree, err = mgr.Run(tree)
	if err != nil {
		return reportAndFail(err)
	}

	backend := &source.Source{UndefinedCheck: enableUndefinedCheck}
	out, err := backend.Generate(tree, pkgName, funcName)
	if err != nil {
		return reportAndFail(err)
	}

	fmt.Print(out)
	return nil
}

// reportAndFail formats err as <Kind>: <message> on stderr, matching
// spec §7's "drivers translate to exit code 1 and a one-line message
// on stderr prefixed by the error kind".
func reportAndFail(err error) error {
	if kinded, ok := err.(interface{ Kind() string }); ok {
		fmt.Fprintf(os.Stderr, "%s: %v\n", errs.FormatKind(kinded.Kind()), err)
	} else {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	return errFailed
}
