package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"noorai/internal/app"
	"noorai/internal/reel"
	"noorai/pkg/config"
)

var (
	onceMode      string
	onceTopic     string
	onceLength    int
	onceGoal      string
	onceLanguage  string
	onceTone      string
	onceReference string
	onceNotes     string
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Generate a single script package",
	Long: `Run one generation in-process and print the validated package as JSON.
Nothing is persisted; useful for prompt and model experiments.`,
	RunE: runOnce,
}

func init() {
	onceCmd.Flags().StringVarP(&onceMode, "mode", "m", reel.ModeFaithAdvice, "Content mode: faith_advice, history_facts or mixed")
	onceCmd.Flags().StringVarP(&onceTopic, "topic", "t", "", "Topic for the script package")
	onceCmd.Flags().IntVarP(&onceLength, "length", "l", 45, "Target length in seconds: 30, 45 or 60")
	onceCmd.Flags().StringVarP(&onceGoal, "goal", "g", "saves", "Engagement goal: saves, shares, comments or follows")
	onceCmd.Flags().StringVar(&onceLanguage, "language", "english", "Output language: english, arabic or bilingual")
	onceCmd.Flags().StringVar(&onceTone, "tone", "calm", "Delivery tone: calm, emotional or intense")
	onceCmd.Flags().StringVar(&onceReference, "reference-text", "", "Source text the script may quote")
	onceCmd.Flags().StringVar(&onceNotes, "source-notes", "", "Notes about the source material")
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	if onceTopic == "" {
		return errors.New("please provide --topic")
	}

	ctx := cmd.Context()
	cfg := config.Load()

	service, err := app.BuildPreviewService(cfg)
	if err != nil {
		return err
	}

	slog.Info("Generating script package...", "topic", onceTopic, "mode", onceMode)
	pkg, err := service.Preview(ctx, reel.Request{
		Mode:          onceMode,
		Topic:         onceTopic,
		LengthSeconds: onceLength,
		Goal:          onceGoal,
		Language:      onceLanguage,
		Tone:          onceTone,
		ReferenceText: onceReference,
		SourceNotes:   onceNotes,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}
