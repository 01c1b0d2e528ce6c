package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/danielsht/flightclaims/internal/compensation"
	"github.com/danielsht/flightclaims/internal/config"
	"github.com/danielsht/flightclaims/internal/provider"
	"github.com/danielsht/flightclaims/internal/service"
	"github.com/danielsht/flightclaims/internal/store"
	"github.com/danielsht/flightclaims/internal/web"
)

var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:     "flightclaims",
		Short:   "Flight disruption resolution and compensation eligibility",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the wired subsystems a command needs.
type app struct {
	cfg   *config.Config
	store *store.Store
	chain *provider.Chain
	svc   *service.FlightData
}

func buildApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var providers []provider.Provider
	if cfg.AeroAPI.Enabled && cfg.AeroAPI.APIKey != "" {
		providers = append(providers, provider.NewAeroAPIProvider(cfg.AeroAPI.APIKey, cfg.AeroAPI.BaseURL))
	}
	if cfg.AeroDataBox.Enabled && cfg.AeroDataBox.APIKey != "" {
		providers = append(providers, provider.NewAeroDataBoxProvider(cfg.AeroDataBox.APIKey, cfg.AeroDataBox.BaseURL))
	}
	if cfg.AviationStack.Enabled && cfg.AviationStack.APIKey != "" {
		providers = append(providers, provider.NewAviationStackProvider(cfg.AviationStack.APIKey, cfg.AviationStack.BaseURL))
	}
	if len(providers) == 0 {
		st.Close()
		return nil, fmt.Errorf("no providers configured; set at least one API key")
	}
	log.Printf("[main] %d providers configured", len(providers))

	chain := provider.NewChain(provider.ChainConfig{
		CacheTTL:         cfg.Chain.CacheTTL,
		BreakerThreshold: cfg.Chain.BreakerThreshold,
		BreakerCooldown:  cfg.Chain.BreakerCooldown,
		MaxBackoff:       cfg.Chain.MaxBackoff,
	}, providers...)

	compCfg := compensation.Config{EURToNIS: decimal.NewFromFloat(cfg.Compensation.EURToNIS)}
	svc := service.New(st, chain, compCfg)

	return &app{cfg: cfg, store: st, chain: chain, svc: svc}, nil
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [flight-number] [date]",
		Short: "Resolve one flight and print its compensation analysis",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			res, err := a.svc.Resolve(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			if res == nil {
				return fmt.Errorf("flight not found: %s %s", args[0], args[1])
			}

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			log.Printf("[main] listening on %s", a.cfg.ListenAddr)
			return web.NewServer(a.svc, a.chain).Run(a.cfg.ListenAddr)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print operational status for each configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			out, err := json.MarshalIndent(a.chain.Statuses(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
