package main

import (
	"fmt"
	"strconv"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
	"github.com/spf13/cobra"
)

// listeningCmd groups the JLPT listening pipeline stages. Each stage reads
// the artifacts written by the one before it, so they can be rerun one by one.
func listeningCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listening",
		Short: "Build listening questions from YouTube JLPT videos",
	}
	cmd.AddCommand(fetchTranscriptCmd())
	cmd.AddCommand(splitCmd())
	cmd.AddCommand(structureCmd())
	cmd.AddCommand(indexCmd())
	cmd.AddCommand(searchCmd())
	cmd.AddCommand(generateQuestionCmd())
	cmd.AddCommand(runCmd())
	return cmd
}

func parseSection(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid section number: %w", err)
	}
	return n, nil
}

func fetchTranscriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <video-url>",
		Short: "Download and save a video's Japanese captions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res, err := engine.FetchTranscript(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return newFormatter().OutputJSON(res)
		},
	}
}

func splitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split <video-id>",
		Short: "Split a saved transcript into numbered problem sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res, err := engine.SplitTranscript(args[0])
			if err != nil {
				return err
			}
			return newFormatter().OutputJSON(res)
		},
	}
}

func structureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "structure <video-id> <section>",
		Short: "Rewrite a section as structured question blocks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := parseSection(args[1])
			if err != nil {
				return err
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res, err := engine.StructureSection(cmd.Context(), args[0], section)
			if err != nil {
				return err
			}
			return newFormatter().OutputJSON(res)
		},
	}
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <video-id> <section>",
		Short: "Embed a section's structured questions into the question index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := parseSection(args[1])
			if err != nil {
				return err
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			n, err := engine.IndexQuestions(cmd.Context(), args[0], section)
			if err != nil {
				return err
			}
			return newFormatter().OutputJSON(map[string]any{"video_id": args[0], "section": section, "indexed": n})
		},
	}
}

func searchCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search <conversation>",
		Short: "Find indexed questions similar to a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			questions, err := engine.SearchQuestions(cmd.Context(), args[0], k)
			if err != nil {
				return err
			}
			return newFormatter().OutputQuestions(questions)
		},
	}
	cmd.Flags().IntVarP(&k, "limit", "n", 0, "number of results (default: listening.search_results)")
	return cmd
}

func generateQuestionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <conversation>",
		Short: "Write a new question modelled on similar indexed ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			q, ok, err := engine.GenerateQuestion(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("could not generate question")
			}
			return newFormatter().OutputQuestions([]portal.Question{*q})
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <video-url>",
		Short: "Fetch, split, structure and index a video in one go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res, err := engine.ProcessVideo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return newFormatter().OutputRunResult(res)
		},
	}
}
