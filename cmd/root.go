package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NeurArk/ai-contract-guardian/client"
	"github.com/NeurArk/ai-contract-guardian/config"
	"github.com/NeurArk/ai-contract-guardian/contracts"
	"github.com/NeurArk/ai-contract-guardian/pkg/logger"
	"github.com/NeurArk/ai-contract-guardian/session"
)

// app wires the config, API client, session store and data layer
// together for the commands. All commands go through these components;
// none talks HTTP directly.
type app struct {
	cfg       *config.Config
	client    *client.Client
	session   *session.Store
	contracts *contracts.Service
}

var (
	configPath string
	apiURL     string
	current    *app
)

var rootCmd = &cobra.Command{
	Use:   "guardian",
	Short: "Client for the AI Contract Guardian API",
	Long: `guardian uploads contract documents (PDF/DOCX) to the AI Contract
Guardian service and tracks their legal-risk analyses from the
command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if apiURL != "" {
			cfg.API.BaseURL = apiURL
		}

		logger.Init(&logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		})

		api := client.New(&cfg.API)
		store := session.NewStore(api, cfg.API.TokenFile)
		api.SetTokenSource(store.Token)
		api.SetUnauthorizedHandler(func() {
			// The CLI's "redirect to login": drop the session once,
			// globally, no matter which command hit the 401.
			store.Invalidate()
			fmt.Fprintln(os.Stderr, "Session expired. Please run 'guardian login' again.")
		})

		current = &app{
			cfg:       cfg,
			client:    api,
			session:   store,
			contracts: contracts.NewService(api),
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "guardian.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "override the API base URL")
}

// requireAuth restores the session and fails when nobody is logged in.
func requireAuth(cmd *cobra.Command) (*app, error) {
	a := current
	if err := a.session.Initialize(cmd.Context()); err != nil {
		return nil, fmt.Errorf("session expired, please run 'guardian login' again")
	}
	if !a.session.IsAuthenticated() {
		return nil, fmt.Errorf("not logged in, run 'guardian login' first")
	}
	return a, nil
}
