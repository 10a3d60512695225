package engine

import (
	"context"
	"log"

	"repohealth/internal/config"
	"repohealth/internal/enhance"
	"repohealth/internal/llmclient"
)

// ProvidersFromConfig builds a client per credentialed provider, wrapped
// with rate limiting and request logging. A provider whose client fails to
// initialize is skipped with a log line rather than failing startup.
func ProvidersFromConfig(ctx context.Context, cfg *config.Config, logger *log.Logger) []enhance.Provider {
	var out []enhance.Provider

	if pc := cfg.Providers.Gemini; pc.Configured() {
		cli, err := llmclient.NewGeminiClient(ctx, pc.APIKey, pc.Model)
		if err != nil {
			log.Printf("gemini client init failed: %v", err)
		} else {
			out = append(out, enhance.Provider{
				Name:   enhance.ProviderGemini,
				Model:  pc.Model,
				Client: wrapClient(cli, pc, logger),
			})
		}
	}
	if pc := cfg.Providers.Groq; pc.Configured() {
		out = append(out, enhance.Provider{
			Name:   enhance.ProviderGroq,
			Model:  pc.Model,
			Client: wrapClient(llmclient.NewGroqClient(pc.APIKey, pc.Model), pc, logger),
		})
	}
	if pc := cfg.Providers.Anthropic; pc.Configured() {
		out = append(out, enhance.Provider{
			Name:   enhance.ProviderAnthropic,
			Model:  pc.Model,
			Client: wrapClient(llmclient.NewAnthropicClient(pc.APIKey, pc.Model), pc, logger),
		})
	}
	return out
}

func wrapClient(cli llmclient.Client, pc config.ProviderConfig, logger *log.Logger) llmclient.Client {
	var mws []llmclient.Middleware
	if pc.RPS > 0 {
		mws = append(mws, llmclient.RateLimit(pc.RPS, pc.Burst))
	}
	if logger != nil {
		mws = append(mws, llmclient.WithLogging(logger))
	}
	return llmclient.Wrap(cli, mws...)
}
