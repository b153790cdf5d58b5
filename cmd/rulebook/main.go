package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coolbeans/rulebook/pkg/library"
	"github.com/coolbeans/rulebook/pkg/rules"
	"github.com/coolbeans/rulebook/pkg/search"
	"github.com/coolbeans/rulebook/pkg/server"
	"github.com/coolbeans/rulebook/pkg/validate"
	"github.com/coolbeans/rulebook/pkg/watch"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "rulebook",
		Short: "Rulebook reference toolkit",
		Long: `Rulebook parses a flat, numbered rulebook text into a navigable tree
of rule sections and answers questions about it.

It provides:
  - Parsing into an indexed, cross-referenced section tree
  - Lookups by identifier, children, and reverse references
  - Ranked text search with match snippets
  - Diffs between rulebook editions
  - A library of ingested editions and a source-file watcher
  - A read-only JSON API for a browsing frontend`,
		Version: version,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(tocCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(childrenCmd())
	rootCmd.AddCommand(refsCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(libraryCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadDocument accepts either a parsed .json document or a raw source text,
// deciding by extension.
func loadDocument(path string) (*rules.RulesData, error) {
	if strings.HasSuffix(path, ".json") {
		return rules.Load(path)
	}
	return rules.NewParser().ParseFile(path)
}

func parseCmd() *cobra.Command {
	var output string
	var stats bool

	cmd := &cobra.Command{
		Use:   "parse <source>",
		Short: "Parse a rulebook source file",
		Long: `Parse a numbered rulebook text file into an indexed section tree.

Example:
  rulebook parse rules-20260105.txt --output rules-20260105.json --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := rules.NewParser().ParseFile(args[0])
			if err != nil {
				return err
			}

			for _, w := range data.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}

			if output != "" {
				if err := rules.Save(output, data); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", output)
			}

			if stats || output == "" {
				byLevel := map[int]int{}
				crossRefs := 0
				maxLevel := 0
				for _, s := range data.Sections {
					byLevel[s.Level]++
					crossRefs += len(s.CrossRefs)
					if s.Level > maxLevel {
						maxLevel = s.Level
					}
				}
				fmt.Printf("Edition:      %s\n", data.Version)
				if data.LastUpdated != "" {
					fmt.Printf("Last updated: %s\n", data.LastUpdated)
				}
				fmt.Printf("Sections:     %d\n", data.Len())
				for level := 0; level <= maxLevel; level++ {
					if n := byLevel[level]; n > 0 {
						fmt.Printf("  level %d:    %d\n", level, n)
					}
				}
				fmt.Printf("Cross-refs:   %d\n", crossRefs)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write parsed document to this JSON file")
	cmd.Flags().BoolVar(&stats, "stats", false, "print parse statistics")
	return cmd
}

func tocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toc <document>",
		Short: "List top-level sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			for _, s := range data.TopLevel() {
				fmt.Printf("%-12s %s\n", s.Number, s.Title)
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <document> <id>",
		Short: "Show one rule section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			node := data.Node(args[1])
			if node == nil {
				return fmt.Errorf("no rule %s in edition %s", args[1], data.Version)
			}

			fmt.Printf("%s %s\n", node.Number, node.Title)
			if rest, ok := strings.CutPrefix(node.Content, node.Title); ok && strings.TrimSpace(rest) != "" {
				fmt.Println(strings.TrimSpace(rest))
			}
			if node.ParentID != "" {
				fmt.Printf("\nParent: %s.\n", node.ParentID)
			}
			if len(node.Children) > 0 {
				fmt.Printf("Children: %s\n", strings.Join(node.Children, ", "))
			}
			if len(node.CrossRefs) > 0 {
				fmt.Printf("References: %s\n", strings.Join(node.CrossRefs, ", "))
			}
			return nil
		},
	}
}

func childrenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "children <document> <id>",
		Short: "List the direct children of a rule section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			if data.Node(args[1]) == nil {
				return fmt.Errorf("no rule %s in edition %s", args[1], data.Version)
			}
			for _, child := range data.ChildNodes(args[1]) {
				fmt.Printf("%-12s %s\n", child.Number, child.Title)
			}
			return nil
		},
	}
}

func refsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refs <document> <id>",
		Short: "List sections that reference a rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			backlinks := data.Referencing(args[1])
			if len(backlinks) == 0 {
				fmt.Printf("Nothing references rule %s.\n", args[1])
				return nil
			}
			for _, s := range backlinks {
				fmt.Printf("%-12s %s\n", s.Number, s.Title)
			}
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <document> <query>",
		Short: "Search the rulebook text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			matches := search.NewSearcher(data).Search(args[1])
			if len(matches) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}
			for _, m := range matches {
				fmt.Printf("%-12s %s (score %d)\n", m.Section.Number, m.Section.Title, m.Score)
				if m.Snippet != "" && m.Snippet != m.Section.Title {
					fmt.Printf("             %s\n", m.Snippet)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results (0 for all)")
	return cmd
}

func diffCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two rulebook editions",
		Long: `Compare two editions, either parsed JSON documents or raw source texts.

Example:
  rulebook diff rules-20250815.txt rules-20260105.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldData, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			newData, err := loadDocument(args[1])
			if err != nil {
				return err
			}

			diff := rules.CompareVersions(oldData, newData)
			if asJSON {
				return printJSON(diff)
			}
			fmt.Print(diff)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the diff as JSON")
	return cmd
}

func validateCmd() *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Check a parsed rulebook against its invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			var report *validate.Report
			if profilePath != "" {
				profile, err := validate.LoadProfile(profilePath)
				if err != nil {
					return err
				}
				report = profile.Validate(data)
			} else {
				report = validate.Structural(data)
			}

			fmt.Print(report)
			if !report.Passed() {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "YAML profile with edition expectations")
	return cmd
}

func libraryCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage a directory of ingested editions",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "editions", "library directory")

	ingest := &cobra.Command{
		Use:   "ingest <source>",
		Short: "Parse a source file into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := library.Open(dir)
			if err != nil {
				return err
			}
			data, err := lib.Ingest(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Ingested edition %s (%d sections)\n", data.Version, data.Len())
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored editions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := library.Open(dir)
			if err != nil {
				return err
			}
			editions, err := lib.Editions()
			if err != nil {
				return err
			}
			if len(editions) == 0 {
				fmt.Println("Library is empty.")
				return nil
			}
			for _, e := range editions {
				fmt.Println(e)
			}
			return nil
		},
	}

	diff := &cobra.Command{
		Use:   "diff <old-version> <new-version>",
		Short: "Compare two stored editions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := library.Open(dir)
			if err != nil {
				return err
			}
			d, err := lib.Diff(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Print(d)
			return nil
		},
	}

	cmd.AddCommand(ingest)
	cmd.AddCommand(list)
	cmd.AddCommand(diff)
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <source>",
		Short: "Re-parse a source file whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := watch.New(args[0], func(u watch.Update) {
				if u.Diff == nil {
					fmt.Printf("Parsed edition %s (%d sections)\n", u.Data.Version, u.Data.Len())
					return
				}
				if u.Diff.Empty() {
					fmt.Println("Re-parsed, no changes.")
					return
				}
				fmt.Print(u.Diff)
			}, watch.WithErrorHandler(func(err error) {
				fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
			}))
			if err != nil {
				return err
			}

			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()
			fmt.Printf("Watching %s, press Ctrl+C to stop.\n", args[0])

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <document>",
		Short: "Serve a parsed rulebook over a read-only JSON API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Serving edition %s on %s\n", data.Version, addr)
			return http.ListenAndServe(addr, server.New(data).Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
