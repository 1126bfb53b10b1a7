// scout is a research assistant CLI: queries go through a chain of hosted
// LLM providers and degrade to locally generated content when none are
// reachable. Run without arguments for the interactive UI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scout/cmd/scout/ui"
	"scout/internal/config"
	"scout/internal/logging"
	"scout/internal/orchestrator"
	"scout/internal/provider"
	"scout/internal/research"
	"scout/internal/store"
)

var (
	cfgPath string
	verbose bool

	cfg *config.Config
	st  *store.Store
	svc *research.Service
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "scout - AI research assistant",
	Long: `scout routes free-text research queries through a chain of hosted
LLM providers (Anthropic, OpenAI, Grok, Gemini), salvages structured
results out of their raw text output, and falls back to locally
generated content when every provider is unavailable.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Init(level); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		svc = research.New(buildOrchestrator(cfg), st)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			if err := st.Close(); err != nil {
				logging.L().Warn("failed to close store", zap.Error(err))
			}
		}
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Hot-reload provider keys while the interactive session runs.
		watcher, err := config.Watch(cfgPath, func(newCfg *config.Config) {
			svc.SetRunner(buildOrchestrator(newCfg))
		})
		if err != nil {
			logging.L().Warn("config watch unavailable", zap.Error(err))
		} else {
			defer watcher.Close()
		}
		return ui.Run(svc)
	},
}

// buildOrchestrator wires one client per provider with a usable key.
func buildOrchestrator(cfg *config.Config) *orchestrator.Orchestrator {
	log := logging.Named("main")
	clients := make(map[provider.Provider]provider.LLMClient)

	for _, pc := range []struct {
		name provider.Provider
		conf config.ProviderConfig
	}{
		{provider.ProviderAnthropic, cfg.Anthropic},
		{provider.ProviderOpenAI, cfg.OpenAI},
		{provider.ProviderGrok, cfg.Grok},
		{provider.ProviderGemini, cfg.Gemini},
	} {
		if pc.conf.APIKey == "" {
			continue
		}
		client, err := newClient(pc.name, pc.conf)
		if err != nil {
			log.Warn("skipping provider", zap.String("provider", string(pc.name)), zap.Error(err))
			continue
		}
		clients[pc.name] = client
	}

	if len(clients) == 0 {
		log.Warn("no providers configured; running on fallback content only")
	}

	var opts []orchestrator.Option
	if cfg.SkipUnhealthy {
		opts = append(opts, orchestrator.WithSkipUnhealthy())
	}
	return orchestrator.New(clients, opts...)
}

// newClient honors a per-provider base URL override when one is set.
func newClient(p provider.Provider, pc config.ProviderConfig) (provider.LLMClient, error) {
	if pc.BaseURL == "" {
		return provider.NewClient(p, pc.APIKey, pc.Model)
	}

	switch p {
	case provider.ProviderAnthropic:
		conf := provider.DefaultAnthropicConfig(pc.APIKey)
		conf.BaseURL = pc.BaseURL
		client := provider.NewAnthropicClientWithConfig(conf)
		if pc.Model != "" {
			client.SetModel(pc.Model)
		}
		return client, nil
	case provider.ProviderOpenAI:
		conf := provider.DefaultOpenAIConfig(pc.APIKey)
		conf.BaseURL = pc.BaseURL
		client := provider.NewOpenAIClientWithConfig(conf)
		if pc.Model != "" {
			client.SetModel(pc.Model)
		}
		return client, nil
	case provider.ProviderGrok:
		conf := provider.DefaultGrokConfig(pc.APIKey)
		conf.BaseURL = pc.BaseURL
		client := provider.NewGrokClientWithConfig(conf)
		if pc.Model != "" {
			client.SetModel(pc.Model)
		}
		return client, nil
	default:
		// Gemini goes through its SDK; no base URL override.
		return provider.NewClient(p, pc.APIKey, pc.Model)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultConfigPath(), "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(searchCmd, analyzeCmd, suggestCmd, reportCmd, statusCmd, historyCmd, analyticsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
