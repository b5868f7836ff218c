// Command tlc runs the tinylang front end over a source file.
//
//	tlc lex   prog.tl   print the symbol stream
//	tlc parse prog.tl   print the AST
//	tlc check prog.tl   parse and type-check, print the global scope
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tinylang/pkg/compiler"
	"tinylang/pkg/config"
)

// exitCompile is returned when the program is rejected, as opposed to a
// usage or I/O failure.
const exitCompile = 2

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	snippetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
)

type app struct {
	cfgPath string
	cfg     *config.Config
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		var cerr *compiler.Error
		if errors.As(err, &cerr) {
			a.report(cerr)
			os.Exit(exitCompile)
		}
		fmt.Fprintln(a.stderr, "tlc:", err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tlc",
		Short:         "tinylang front end: lexer, parser and semantic analyzer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "TOML or YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "lex <file>",
			Short: "Print the symbols of a source file",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runLex,
		},
		&cobra.Command{
			Use:   "parse <file>",
			Short: "Print the syntax tree of a source file",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runParse,
		},
		&cobra.Command{
			Use:   "check <file>",
			Short: "Type-check a source file",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runCheck,
		},
	)
	return root
}

func (a *app) setup() error {
	a.cfg = config.Default()
	if a.cfgPath != "" {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level, err := a.cfg.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(a.stderr, opts)
	if a.cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(a.stderr, opts)
	}
	a.logger = slog.New(h)
	return nil
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func (a *app) runLex(cmd *cobra.Command, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		return err
	}
	symbols, err := compiler.Lex(src)
	if err != nil {
		return err
	}
	a.logger.Debug("lexed", "file", args[0], "symbols", len(symbols))
	for _, s := range symbols {
		fmt.Fprintf(a.stdout, "%4d  %-16s %s\n", s.Line, s.Type, s.Lexeme)
	}
	return nil
}

func (a *app) runParse(cmd *cobra.Command, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		return err
	}
	root, err := compiler.Parse(src)
	if err != nil {
		return err
	}
	a.logger.Debug("parsed", "file", args[0], "statements", len(root.Stmts))
	return compiler.Fprint(a.stdout, root)
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		return err
	}
	prog, err := compiler.Compile(src, compiler.WithLogger(a.logger.With("file", args[0])))
	if err != nil {
		return err
	}

	fmt.Fprint(a.stdout, prog.Globals)
	var reachable []string
	for name := range prog.Reachable {
		reachable = append(reachable, name)
	}
	sort.Strings(reachable)
	fmt.Fprintf(a.stdout, "reachable: %v\n", reachable)
	fmt.Fprintln(a.stdout, a.style(okStyle, "ok"))
	return nil
}

// report prints a compile error, honouring the output settings.
func (a *app) report(err *compiler.Error) {
	show := a.cfg == nil || a.cfg.Output.ShowSnippet
	plain := *err
	plain.Snippet = ""
	fmt.Fprintln(a.stderr, a.style(errorStyle, plain.Error()))
	if show && err.Snippet != "" {
		fmt.Fprintln(a.stderr, a.style(snippetStyle, "  |> "+err.Snippet))
	}
}

func (a *app) style(s lipgloss.Style, text string) string {
	if a.cfg != nil && !a.cfg.Output.Color {
		return text
	}
	return s.Render(text)
}
