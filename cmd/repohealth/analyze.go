package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repohealth/internal/config"
	"repohealth/internal/engine"
	"repohealth/internal/enhance"
	"repohealth/internal/reportstore"
	"repohealth/internal/snapshot"
	"repohealth/internal/util/jsonutil"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Generate a health report for a local repository",
	Long: `Sample source files under dir (default ".") and produce a health report.

Examples:
  # Local heuristics only (no credentials needed)
  repohealth analyze .

  # Force hybrid consensus across every configured provider
  repohealth analyze --mode hybrid ~/src/service

  # Raw JSON on stdout, and a copy saved to a file
  repohealth analyze --json --out report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		mode, _ := cmd.Flags().GetString("mode")
		localWeight, _ := cmd.Flags().GetFloat64("local-weight")
		maxFiles, _ := cmd.Flags().GetInt("max-files")
		asJSON, _ := cmd.Flags().GetBool("json")
		outPath, _ := cmd.Flags().GetString("out")

		snap, err := snapshot.FromDir(dir, snapshot.LoadOptions{MaxFiles: maxFiles})
		if err != nil {
			return err
		}

		ctx := context.Background()
		cfg := config.FromEnv()
		eng := engine.New(engine.Options{
			Orchestrator: enhance.New(cfg.ProviderTimeout, engine.ProvidersFromConfig(ctx, cfg, nil)...),
			Store:        reportstore.NewFromEnv(),
			Mode:         cfg.Mode,
			LocalWeight:  cfg.LocalWeight,
		})
		defer eng.Close()

		rep, err := eng.GenerateReport(ctx, snap, engine.RequestOptions{
			Mode:        mode,
			LocalWeight: localWeight,
		})
		if err != nil {
			return err
		}

		raw, err := jsonutil.MarshalNoEscapeIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if outPath != "" {
			if err := os.WriteFile(outPath, raw, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(os.Stderr, "report saved to %s\n", outPath)
		}
		if asJSON {
			fmt.Println(string(raw))
			return nil
		}

		renderReport(os.Stdout, rep)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("mode", "", "enhancement mode: hybrid, auto, gemini, groq, or anthropic (default REPORT_AI_MODE)")
	analyzeCmd.Flags().Float64("local-weight", 0, "local anchor weight in [0.5,0.95] (default REPORT_LOCAL_WEIGHT)")
	analyzeCmd.Flags().Int("max-files", 0, "max files sampled from the directory (default 120)")
	analyzeCmd.Flags().Bool("json", false, "print the raw report JSON instead of the rendered summary")
	analyzeCmd.Flags().String("out", "", "also write the report JSON to this file")

	rootCmd.AddCommand(analyzeCmd)
}
