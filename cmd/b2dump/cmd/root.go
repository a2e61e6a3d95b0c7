// Package cmd implements the b2dump CLI driver: the AST pretty-printer
// reference tool spec §6 names. Structured as a single cobra root
// command (no subcommands) rather than the teacher's
// run/lex/parse/fmt subcommand tree, because b2dump only ever does one
// thing — dump a template's AST after running the selected passes.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcuelenaere/b2/ast/jsondump"
	"github.com/mcuelenaere/b2/ast/printer"
	"github.com/mcuelenaere/b2/config"
	"github.com/mcuelenaere/b2/errs"
	"github.com/mcuelenaere/b2/internal/pipeline"
)

// errFailed is returned from runDump once the real diagnostic has
// already been written to stderr by reportAndFail, so Execute's caller
// can distinguish "ran and failed" (exit 1, no further output) from a
// cobra usage error (which cobra prints itself).
var errFailed = errors.New("b2dump: failed")

var (
	enableAllPasses  bool
	disableAllPasses bool
	enableFlags      = map[string]*bool{}
	disableFlags     = map[string]*bool{}
	templateBasepath string
	configPath       string
	format           string
)

var rootCmd = &cobra.Command{
	Use:   "b2dump <template>",
	Short: "Dump a b2 template's AST after running the rewrite pipeline",
	Long: `b2dump parses a template, runs the selected rewrite passes over
it, and prints the resulting AST in the bracketed-tag debug format
(or, with --format=json, as an equivalent JSON document).`,
	Args:          cobra.ExactArgs(1),
	RunE:          runDump,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().BoolVar(&enableAllPasses, "enable-all-passes", true, "enable every rewrite pass (default)")
	rootCmd.Flags().BoolVar(&disableAllPasses, "disable-all-passes", false, "disable every rewrite pass")
	for _, name := range pipeline.Names {
		enableFlags[name] = rootCmd.Flags().Bool("enable-"+name, false, "enable the "+name+" pass")
		disableFlags[name] = rootCmd.Flags().Bool("disable-"+name, false, "disable the "+name+" pass")
	}
	rootCmd.Flags().StringVarP(&templateBasepath, "template-basepath", "t", ".", "include search root")
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.Flags().StringVar(&format, "format", "text", `output format: "text" or "json"`)
}

// Execute runs the b2dump root command.
func Execute() error {
	return rootCmd.Execute()
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}

	opts := &pipeline.Options{
		TemplateBasepath: templateBasepath,
		Enabled:          map[string]bool{},
		Default:          !disableAllPasses,
	}
	for _, name := range pipeline.Names {
		if *enableFlags[name] {
			opts.Enabled[name] = true
		}
		if *disableFlags[name] {
			opts.Enabled[name] = false
		}
	}
	opts.Merge(cfg)
	if !cmd.Flags().Changed("template-basepath") && cfg.TemplateBasepath != "" {
		opts.TemplateBasepath = cfg.TemplateBasepath
	}

	templatePath := args[0]
	source, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", templatePath, err)
	}

	tree, err := pipeline.Parse(string(source), templatePath)
	if err != nil {
		return reportAndFail(err)
	}

	mgr := pipeline.Build(opts)
	tree, err = mgr.Run(tree)
	if err != nil {
		return reportAndFail(err)
	}

	switch format {
	case "json":
		doc, err := jsondump.Dump(tree)
		if err != nil {
			return reportAndFail(err)
		}
		fmt.Println(doc)
	default:
		fmt.Print(printer.Print(tree))
	}
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
