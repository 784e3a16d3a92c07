package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cjlcarvalho/cminus/pkg/ast"
	"github.com/cjlcarvalho/cminus/pkg/compiler"
	"github.com/spf13/cobra"
	"github.com/ztrue/tracerr"
)

var version = "0.1.0"

var (
	outputPath string
	dumpAST    bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cminus [file]",
		Short: "cminus compiles C- source to MIPS O32 assembly",
		Long: `cminus is a compiler for C-, a small teaching subset of C with
int and void types, one-dimensional arrays, and no preprocessor. It emits
MIPS assembly suitable for SPIM or MARS.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compileFile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write assembly to this file instead of stdout")
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "also dump the checked AST to stderr")

	return rootCmd
}

// compileFile reads filename, compiles it, and either writes the resulting
// assembly to outputPath (or out, if outputPath is empty) or returns an
// error. The compiler's diagnostics themselves are printed by the
// diagnostic bus's default terminal handler on standard error, not to
// errOut; errOut receives file I/O errors and the --dump-ast output.
func compileFile(filename string, out, errOut io.Writer) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		wrapped := tracerr.Wrap(err)
		fmt.Fprintf(errOut, "cminus: error reading %s: %v\n", filename, wrapped)
		return wrapped
	}

	res := compiler.Compile(filename, string(content))
	if dumpAST && res.Program != nil {
		ast.NewPrinter(errOut).Print(res.Program)
	}
	if res.Diags.HasErrors() {
		return fmt.Errorf("cminus: compilation of %s failed", filename)
	}

	if outputPath == "" {
		fmt.Fprint(out, res.Assembly)
		return nil
	}

	if err := os.WriteFile(outputPath, []byte(res.Assembly), 0o644); err != nil {
		wrapped := tracerr.Wrap(err)
		fmt.Fprintf(errOut, "cminus: error writing %s: %v\n", outputPath, wrapped)
		return wrapped
	}
	return nil
}
