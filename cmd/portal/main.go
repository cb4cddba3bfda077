package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/output"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	cfg          *storage.Config
	outputFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal",
		Short: "Japanese vocabulary portal: word lists, study tracking and JLPT listening practice",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "output format: json, text, human (default: json)")

	rootCmd.AddCommand(initConfigCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(wordsCmd())
	rootCmd.AddCommand(groupsCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(diagnosticsCmd())
	rootCmd.AddCommand(cleanupCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(listeningCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(remindCmd())
	rootCmd.AddCommand(daemonCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	c, err := storage.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

func openEngine() (*portal.Engine, error) {
	engine, err := portal.NewEngine(portal.EngineConfig{Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func newFormatter() *output.Formatter {
	return output.NewFormatter(output.Format(outputFormat))
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", what, err)
	}
	return id, nil
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Create a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config file already exists: %s", configPath)
			}
			if err := storage.WriteConfig(configPath, storage.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("Created default config at %s\n", configPath)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample words, groups and activities into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			seeded, err := engine.Seed(dir)
			if err != nil {
				return err
			}
			if !seeded {
				newFormatter().Warning("database already has words, nothing seeded")
				return nil
			}
			fmt.Println("Database seeded")
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "seed directory (default: database.seed_dir)")
	return cmd
}

func wordsCmd() *cobra.Command {
	var page, perPage int
	var search string

	cmd := &cobra.Command{
		Use:   "words",
		Short: "List vocabulary words",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			words, err := engine.ListWords(page, perPage, search)
			if err != nil {
				return err
			}
			return newFormatter().OutputWords(words)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&perPage, "per-page", "n", 10, "words per page")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by kanji, romaji or meaning")
	return cmd
}

func groupsCmd() *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "groups [group-id]",
		Short: "List word groups, or the words of one group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			formatter := newFormatter()
			if len(args) == 1 {
				id, err := parseID(args[0], "group ID")
				if err != nil {
					return err
				}
				words, err := engine.GetGroupWords(id, page, perPage)
				if err != nil {
					return err
				}
				return formatter.OutputWords(words)
			}

			groups, err := engine.ListGroups(page, perPage)
			if err != nil {
				return err
			}
			return formatter.OutputGroups(groups)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&perPage, "per-page", "n", 10, "items per page")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show learning progress per group",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			stats, err := engine.AllGroupsStats()
			if err != nil {
				return err
			}
			return newFormatter().OutputAllGroupsStats(stats)
		},
	}
}

func diagnosticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnostics",
		Short: "Show table counts and group sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			d, err := engine.Diagnostics()
			if err != nil {
				return err
			}
			return newFormatter().OutputDiagnostics(d)
		},
	}
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete group memberships and progress rows that point at missing words",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res, err := engine.CleanupOrphans()
			if err != nil {
				return err
			}
			return newFormatter().OutputJSON(res)
		},
	}
}

func generateCmd() *cobra.Command {
	var level string
	var save bool

	cmd := &cobra.Command{
		Use:   "generate-words <category>",
		Short: "Generate vocabulary for a theme with the language model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			formatter := newFormatter()
			res, err := engine.GenerateWords(cmd.Context(), args[0], level)
			if err != nil {
				return err
			}
			if res.Strategy == "fallback" {
				formatter.Warning("model output could not be parsed, using the fallback list")
			}
			if !save {
				return formatter.OutputGeneratedWords(res)
			}

			imported, err := engine.ImportWords(res.Words, args[0])
			if err != nil {
				return err
			}
			return formatter.OutputImportResult(imported)
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", "N5", "JLPT level (N5-N1)")
	cmd.Flags().BoolVar(&save, "save", false, "import the generated words into a new group")
	return cmd
}

func importCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import words from a JSON, XLSX or CSV file into a new group",
		Long: `Import words into a group named after the category.
JSON files hold an array of {kanji, romaji, vietnamese, jlpt_level, parts}
objects. XLSX and CSV files hold one word per row with a header row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if category == "" {
				category = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			var res *portal.ImportResult
			if strings.EqualFold(filepath.Ext(path), ".json") {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read words: %w", err)
				}
				var words []portal.GeneratedWord
				if err := json.Unmarshal(data, &words); err != nil {
					return fmt.Errorf("failed to parse words: %w", err)
				}
				res, err = engine.ImportWords(words, category)
				if err != nil {
					return err
				}
			} else {
				res, err = engine.ImportFile(path, category)
				if err != nil {
					return err
				}
			}
			return newFormatter().OutputImportResult(res)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "g", "", "group name (default: file name)")
	return cmd
}

func ingestCmd() *cobra.Command {
	var opmlPath string

	cmd := &cobra.Command{
		Use:   "ingest [channel-id...]",
		Short: "Process new videos of YouTube channels (default: listening.channels)",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			channels := args
			if opmlPath != "" {
				fromOPML, err := engine.ChannelsFromOPML(opmlPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Loaded %d channels from %s\n", len(fromOPML), opmlPath)
				channels = append(channels, fromOPML...)
			}

			results, err := ingest(cmd.Context(), engine, channels)
			if err != nil {
				return err
			}
			return newFormatter().OutputIngestResults(results)
		},
	}
	cmd.Flags().StringVar(&opmlPath, "opml", "", "OPML file listing channel feeds (e.g. a subscriptions export)")
	return cmd
}

func ingest(ctx context.Context, engine *portal.Engine, channels []string) ([]*portal.IngestResult, error) {
	if len(channels) == 0 {
		return engine.IngestConfiguredChannels(ctx)
	}
	var results []*portal.IngestResult
	for _, ch := range channels {
		res, err := engine.IngestChannel(ctx, ch)
		if err != nil {
			return results, fmt.Errorf("ingest %s: %w", ch, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func remindCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send a reminder for learned words that need review",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res, err := engine.SendReviewReminders(cmd.Context(), days)
			if err != nil {
				return err
			}
			return newFormatter().OutputJSON(res)
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 0, "minimum days since last study (default: daemon.reminder_days)")
	return cmd
}
