package cmd

import (
	"fmt"
	"os"

	"github.com/DAIOS-AI/mindscript/internal/oracle"
	"github.com/spf13/cobra"
)

// Version information (set by build flags).
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var backends = []string{"llamacpp", "openai", "ollama"}

var (
	backendName  string
	backendURL   string
	backendModel string
	trace        bool
)

var rootCmd = &cobra.Command{
	Use:   "mindscript [file]",
	Short: "MindScript interpreter",
	Long: `mindscript is a Go implementation of MindScript, a dynamically
evaluated, structurally-typed scripting language with a first-class
"oracle function" whose body is synthesized by an LLM backend,
constrained by the function's declared JSON Schema and BNF grammar.

Running the root command with a file argument executes that file;
without one it starts an interactive REPL. Use the run/repl
subcommands directly for explicit control.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runFile(args[0])
		}
		return runREPL()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "llamacpp",
		fmt.Sprintf("LLM backend, one of %v", backends))
	rootCmd.PersistentFlags().StringVarP(&backendURL, "url", "u", "", "backend API URL")
	rootCmd.PersistentFlags().StringVarP(&backendModel, "model", "m", "", "model name (required for openai/ollama)")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "log backend requests/responses to stderr")
}

// buildBackend constructs the oracle backend selected by the
// -b/-u/-m flags, mirroring cli.py's main() backend-selection branch.
func buildBackend() (oracle.Backend, error) {
	var backend oracle.Backend
	var err error
	switch backendName {
	case "", "llamacpp":
		backend = oracle.NewLlamaCPP(backendURL)
	case "openai":
		backend, err = oracle.NewOpenAI(backendURL, backendModel)
	case "ollama":
		backend, err = oracle.NewOllama(backendURL, backendModel)
	default:
		return nil, fmt.Errorf("unknown backend: %s (expected one of %v)", backendName, backends)
	}
	if err != nil {
		return nil, err
	}
	if trace {
		backend = newTracingBackend(backend)
	}
	return backend, nil
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
