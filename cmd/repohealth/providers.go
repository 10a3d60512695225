package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"repohealth/internal/config"
	"repohealth/internal/enhance"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show configured AI providers and the resolved plan",
	Run: func(cmd *cobra.Command, args []string) {
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		cfg := config.FromEnv()

		fmt.Printf("%s Mode %s, local weight %.2f, provider timeout %s\n\n",
			cyan("▸"), cfg.Mode, cfg.LocalWeight, cfg.ProviderTimeout)

		rows := []struct {
			name enhance.ProviderName
			pc   config.ProviderConfig
		}{
			{enhance.ProviderGemini, cfg.Providers.Gemini},
			{enhance.ProviderGroq, cfg.Providers.Groq},
			{enhance.ProviderAnthropic, cfg.Providers.Anthropic},
		}

		var available []enhance.ProviderName
		for _, row := range rows {
			if row.pc.Configured() {
				fmt.Printf("  %s %-10s %s\n", green("✓"), row.name, row.pc.Model)
				available = append(available, row.name)
			} else {
				fmt.Printf("  %s %-10s no API key\n", red("✗"), row.name)
			}
		}

		plan := enhance.ResolvePlan(cfg.Mode, available)
		switch plan.Kind {
		case enhance.PlanEmpty:
			fmt.Printf("\n%s Reports will use local heuristics only\n", cyan("▸"))
		case enhance.PlanHybrid:
			fmt.Printf("\n%s Plan: hybrid consensus across %d providers\n", cyan("▸"), len(plan.Providers))
		default:
			fmt.Printf("\n%s Plan: sequential %v", cyan("▸"), plan.Providers)
			if plan.Degraded {
				fmt.Printf(" (hybrid requested, fewer than 2 providers)")
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
