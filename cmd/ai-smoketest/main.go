package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	aicore "github.com/teambots/teambots/src/ai/core"
	"github.com/teambots/teambots/src/ai/gemini"
	"github.com/teambots/teambots/src/ai/modelselect"
	"github.com/teambots/teambots/src/brain"
	"github.com/teambots/teambots/src/config"
	"github.com/teambots/teambots/src/prompts"
)

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai-smoketest",
		Short: "Exercise the Brain Client against live endpoints",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return config.LoadFile(viper.GetString("config"))
		},
	}
	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))

	cmd.AddCommand(newCompleteCmd())
	cmd.AddCommand(newModelsCmd())
	return cmd
}

func newCompleteCmd() *cobra.Command {
	var (
		system, role, prompt, model string
		timeout                     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Run one completion through gateway, then backup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(prompt) == "" {
				return errors.New("--prompt is required")
			}
			if system == "" {
				system = prompts.New(config.LoadBase().ProfilesDir).Resolve(role)
			}

			cfg := config.LoadBrain()
			if cfg.BackupModel == "" {
				cfg.BackupModel = aicore.DefaultModelForProvider("gemini")
			}
			client := brain.New(cfg, nil)
			gw, bk := client.Configured()
			fmt.Fprintf(cmd.OutOrStdout(), "providers=%v gateway=%v backup=%v\n", aicore.Registered(), gw, bk)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			start := time.Now()
			res := client.Complete(ctx, system, prompt, model)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%.1fs)\n%s\n", res.Footer(), time.Since(start).Seconds(), res.Content)
			if res.Source == brain.Dead {
				return errors.New("both paths failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&system, "system", "", "System instruction (overrides --role).")
	cmd.Flags().StringVar(&role, "role", "skeptic", "Role profile to use as the system instruction.")
	cmd.Flags().StringVar(&prompt, "prompt", "", "User text.")
	cmd.Flags().StringVar(&model, "model", "", "Gateway model hint (default auto).")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "Overall timeout.")
	return cmd
}

func newModelsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List backup models with their selection scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadBrain()
			client, err := gemini.New(aicore.FactoryConfig{Provider: "gemini", APIKey: cfg.BackupAPIKey})
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			models, err := client.ListModels(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ranked := modelselect.Rank(models)
			for i, c := range ranked {
				if limit > 0 && i >= limit {
					break
				}
				fmt.Fprintf(out, "%6.0f  %s\n", c.Score, c.Name)
			}
			selected := aicore.DefaultModelForProvider("gemini")
			if len(ranked) > 0 {
				selected = ranked[0].Name
			}
			fmt.Fprintf(out, "selected: %s\n", selected)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many models (0 = all).")
	return cmd
}
