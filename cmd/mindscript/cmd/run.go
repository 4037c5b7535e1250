package cmd

import (
	"fmt"
	"os"

	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/lexer"
	"github.com/DAIOS-AI/mindscript/internal/parser"
	"github.com/DAIOS-AI/mindscript/pkg/mindscript"
	"github.com/spf13/cobra"
)

var evalExpr string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a MindScript file or expression",
	Long: `Execute a MindScript program from a file or inline expression.

Examples:
  mindscript run script.ms
  mindscript run -e "1 + 1"
  mindscript run -b openai -m gpt-4o-mini script.ms`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if evalExpr != "" {
			return runSource(evalExpr, "<eval>")
		}
		if len(args) == 1 {
			return runFile(args[0])
		}
		return fmt.Errorf("either provide a file path or use -e for inline code")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
}

func runFile(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		exitWithError("failed to read file %s: %v", filename, err)
	}
	return runSource(string(content), filename)
}

func runSource(code, buffer string) error {
	backend, err := buildBackend()
	if err != nil {
		exitWithError("%v", err)
	}

	engine := mindscript.New(mindscript.WithBackend(backend))
	result, err := engine.Eval(code, buffer)
	if err != nil {
		reportEvalError(err, code, buffer)
		return fmt.Errorf("execution failed")
	}
	if result != nil {
		fmt.Println(engine.PrintValue(result))
	}
	return nil
}

// reportEvalError prints a diagnostic for a parse/lexical/runtime
// error, structured by kind rather than the raw stack trace
// cli.py's execute_file prints via traceback.format_exc.
func reportEvalError(err error, code, buffer string) {
	switch e := err.(type) {
	case *lexer.LexicalError:
		fmt.Fprintf(os.Stderr, "Lexical error in %s: %s\n", buffer, e.Error())
	case *parser.SyntaxError:
		fmt.Fprintf(os.Stderr, "Syntax error in %s: %s\n", buffer, e.Error())
	case *interp.RuntimeError:
		fmt.Fprintf(os.Stderr, "Runtime error at %s: %s\n", e.Pos.String(), e.Msg)
	default:
		fmt.Fprintf(os.Stderr, "Error in %s: %v\n", buffer, err)
	}
}
