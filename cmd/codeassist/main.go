// Command codeassist runs the workspace intelligence layer from the command
// line: search, definition and reference lookup, TODO listing and context
// inspection over a directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gozephyr/codeassist"
	"github.com/gozephyr/codeassist/assembler"
	"github.com/gozephyr/codeassist/config"
	"github.com/gozephyr/codeassist/errors"
	"github.com/gozephyr/codeassist/lang"
	"github.com/gozephyr/codeassist/search"
	"github.com/gozephyr/codeassist/trigger"
	"github.com/gozephyr/codeassist/workspace"
)

var (
	flagWorkspace string
	flagConfig    string
	flagLanguage  string

	flagCaseSensitive bool
	flagWholeWord     bool
	flagRegex         bool
	flagNoComments    bool
	flagNoStrings     bool
	flagFileTypes     []string
	flagMaxResults    int
	flagContextLines  int

	flagFullContent bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "codeassist",
		Short:         "Workspace search and completion-context tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", ".", "workspace root directory")
	cmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (YAML)")

	cmd.AddCommand(searchCmd(), defsCmd(), refsCmd(), todosCmd(), contextCmd(), statsCmd())
	return cmd
}

// newEngine builds an engine over the workspace named by the global flags.
// The CLI has no completion backend; only the search and context surfaces
// are reachable.
func newEngine() (*codeassist.Engine, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.NewOSWorkspace(flagWorkspace)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))

	completer := trigger.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.ErrBackendFailure
	})
	return codeassist.New(ws, completer,
		codeassist.WithConfig(cfg),
		codeassist.WithLogger(logger)), nil
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search workspace files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			opts := search.DefaultOptions()
			opts.CaseSensitive = flagCaseSensitive
			opts.WholeWord = flagWholeWord
			opts.UseRegex = flagRegex
			opts.IncludeComments = !flagNoComments
			opts.IncludeStrings = !flagNoStrings
			opts.FileTypes = flagFileTypes
			if flagMaxResults > 0 {
				opts.MaxResults = flagMaxResults
			}
			if flagContextLines >= 0 {
				opts.ContextLines = flagContextLines
			}

			results, err := e.Search(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			printResults(cmd, results)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagCaseSensitive, "case-sensitive", false, "match case exactly")
	cmd.Flags().BoolVar(&flagWholeWord, "whole-word", false, "match whole words only")
	cmd.Flags().BoolVar(&flagRegex, "regex", false, "treat query as a regular expression")
	cmd.Flags().BoolVar(&flagNoComments, "no-comments", false, "skip comment lines")
	cmd.Flags().BoolVar(&flagNoStrings, "no-strings", false, "skip matches inside string literals")
	cmd.Flags().StringSliceVar(&flagFileTypes, "type", nil, "restrict to file extensions (e.g. go,ts)")
	cmd.Flags().IntVar(&flagMaxResults, "max-results", 0, "maximum number of results")
	cmd.Flags().IntVar(&flagContextLines, "context", -1, "context lines around each match")
	return cmd
}

func defsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defs <identifier>",
		Short: "Find declaration sites of an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			results, err := e.SearchDefinitions(cmd.Context(), args[0], lang.FromID(flagLanguage))
			if err != nil {
				return err
			}
			printResults(cmd, results)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagLanguage, "lang", "l", "", "language identifier (go, typescript, python, ...)")
	return cmd
}

func refsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs <identifier>",
		Short: "Find references to an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			results, err := e.SearchReferences(cmd.Context(), args[0], lang.FromID(flagLanguage))
			if err != nil {
				return err
			}
			printResults(cmd, results)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagLanguage, "lang", "l", "", "language identifier (go, typescript, python, ...)")
	return cmd
}

func todosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "todos",
		Short: "List TODO, FIXME and related markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			results, err := e.SearchTodos(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range results {
				cmd.Printf("%s:%d: %s\n", r.URI, r.LineNumber+1, strings.TrimSpace(r.LineText))
			}
			return nil
		},
	}
}

func contextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context <file>",
		Short: "Show the completion context assembled for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			ws, err := workspace.NewOSWorkspace(flagWorkspace)
			if err != nil {
				return err
			}
			content, err := ws.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			doc := &workspace.Document{
				URI:        args[0],
				LanguageID: lang.FromPath(args[0]).String(),
				Version:    1,
				Text:       content,
			}
			opts := assembler.DefaultFormatOptions()
			opts.IncludeCurrentContent = flagFullContent

			text, err := e.ContextText(cmd.Context(), doc, opts)
			if err != nil {
				return err
			}
			cmd.Print(text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagFullContent, "full", false, "embed the full file content")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			stats := e.CacheStats()
			names := make([]string, 0, len(stats))
			for name := range stats {
				names = append(names, name)
			}
			sort.Strings(names)

			if len(names) == 0 {
				cmd.Println("cache is empty")
				return nil
			}
			for _, name := range names {
				s := stats[name]
				cmd.Printf("%-16s entries=%d hits=%d bytes=%d\n", name, s.Size, s.Hits, s.MemoryBytes)
			}
			return nil
		},
	}
}

func printResults(cmd *cobra.Command, results []search.Result) {
	if len(results) == 0 {
		cmd.Println("no matches")
		return
	}
	for _, r := range results {
		cmd.Printf("%s:%d:%d: %s  (score %.2f)\n",
			r.URI, r.LineNumber+1, r.ColumnNumber+1, strings.TrimSpace(r.LineText), r.RelevanceScore)
	}
}
