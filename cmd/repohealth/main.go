package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repohealth",
	Short: "Repository health reports from local heuristics plus optional AI review",
	Long: `repohealth scores a repository on maintainability, reliability, security,
documentation, and architecture from a bounded sample of its source files.

Deterministic heuristics produce the baseline. When provider credentials are
present (GEMINI_API_KEY, GROQ_API_KEY, ANTHROPIC_API_KEY), the baseline is
refined by AI review in sequential-fallback or hybrid-consensus mode.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
