package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/lexer"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/parser"
	"github.com/DAIOS-AI/mindscript/pkg/mindscript"
	"github.com/spf13/cobra"
)

const (
	ansiGreen = "\033[32m"
	ansiBlue  = "\033[94m"
	ansiRed   = "\x1B[31m"
	ansiReset = "\033[0m"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive MindScript session",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return runREPL()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// runREPL implements cli.py's repl(): accumulate lines until a
// complete expression parses, evaluate it, print its value (and
// annotation, if any) in color, and keep going until EOF.
func runREPL() error {
	backend, err := buildBackend()
	if err != nil {
		exitWithError("%v", err)
	}

	fmt.Printf("MindScript Version %s (%s)\n(C) 2024, 2025 DAIOS Technologies Limited\nUse Control-D to exit.\n\n", Version, backendName)

	engine := mindscript.New(mindscript.WithBackend(backend), mindscript.Interactive())
	scanner := bufio.NewScanner(os.Stdin)

	prompt := "> "
	lines := ""
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		lines += scanner.Text() + "\n"

		result, evalErr := engine.Eval(lines, "<repl>")
		if evalErr != nil {
			if _, incomplete := evalErr.(*parser.IncompleteExpression); incomplete {
				prompt = "| "
				continue
			}
			printREPLError(evalErr)
			prompt = "> "
			lines = ""
			continue
		}

		prompt = "> "
		lines = ""
		if result == nil || object.IsNull(result) {
			continue
		}
		if ann := result.Annotation(); ann != "" {
			fmt.Printf("%s%s\n", ansiGreen, ann)
		}
		fmt.Printf("%s%s%s\n", ansiBlue, engine.PrintValue(result), ansiReset)
	}
}

func printREPLError(err error) {
	switch e := err.(type) {
	case *lexer.LexicalError:
		fmt.Printf("%sLexical error: %s%s\n", ansiRed, e.Error(), ansiReset)
	case *parser.SyntaxError:
		fmt.Printf("%sSyntax error: %s%s\n", ansiRed, e.Error(), ansiReset)
	case *interp.RuntimeError:
		fmt.Printf("%sRuntime error at %s: %s%s\n", ansiRed, e.Pos.String(), e.Msg, ansiReset)
	default:
		fmt.Printf("%s%v%s\n", ansiRed, err, ansiReset)
	}
}
