package cmd

import (
	"fmt"
	"net/http"
	"os"

	"factcheck/config"
	"factcheck/logger"
	"factcheck/services"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Each call returns independent flag state.
func NewRootCmd() *cobra.Command {
	var cfg config.Config

	root := &cobra.Command{
		Use:           "factcheck",
		Short:         "Media authenticity and fact-check service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = *loaded
			logger.Setup(cfg.LogLevel)
			return nil
		},
	}

	root.AddCommand(newServeCmd(&cfg), newAnalyzeCmd(&cfg))
	return root
}

func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

// newAIClient picks the provider named by PROVIDER.
func newAIClient(cfg *config.Config) (services.AIClient, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		if config.APIKey() == "" {
			log.WithField("component", "config").Warn("GEMINI_API_KEY is not set, provider calls will fail")
		}
		return services.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiModel, config.APIKey, &http.Client{}), nil
	case config.ProviderStub:
		return services.NewStubClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s or %s)", cfg.Provider, config.ProviderGemini, config.ProviderStub)
	}
}

func newServices(cfg *config.Config) (*services.Normalizer, *services.AnalyzerService, error) {
	client, err := newAIClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	fetcher := services.NewContentFetcher(cfg.FetchTimeout, cfg.MaxMediaBytes)
	normalizer := services.NewNormalizer(fetcher, services.NewPlatformMatcher(cfg.PlatformDomains...), cfg.MaxMediaBytes)

	log.WithFields(log.Fields{
		"component": "config",
		"provider":  client.Name(),
		"model":     cfg.GeminiModel,
	}).Info("analyzer ready")
	return normalizer, services.NewAnalyzerService(client), nil
}
