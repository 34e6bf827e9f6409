// Package commands implements the hytale-login CLI commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hytalecompat/gameserver/internal/authmanager"
	"github.com/hytalecompat/gameserver/internal/config"
	"github.com/hytalecompat/gameserver/internal/credstore"
	"github.com/hytalecompat/gameserver/internal/hostio"
	"github.com/hytalecompat/gameserver/internal/machineid"
	"github.com/hytalecompat/gameserver/internal/oauth"
	"github.com/hytalecompat/gameserver/internal/session"
)

// configPath is the shared --config persistent flag every subcommand
// builds its auth manager from.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "hytale-login",
	Short: "Manage this game server's OAuth device-flow login",
	Long:  "hytale-login drives the OAuth 2.0 device authorization grant, persists the resulting credentials in the same encrypted store gameserverd reads, and lets you inspect or clear that store.",

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (YAML); defaults when empty")

	rootCmd.AddCommand(deviceCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildManager wires an authmanager.Manager against the same credential
// store and OAuth/session endpoints gameserverd would use, so a login
// performed here is picked up by the daemon on its next restart.
func buildManager() (*authmanager.Manager, credstore.Store, *config.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	httpClient := hostio.DefaultHTTPClient{}
	clock := hostio.SystemClock{}
	random := hostio.CryptoRandom{}
	fs := hostio.OSFilesystem{}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.Log.Level)}))

	resolver := machineid.NewResolver(fs, random, "")
	var store credstore.Store
	if machineUUID, err := resolver.Resolve(); err == nil {
		store = credstore.NewEncryptedStore(fs, random, cfg.Auth.CredentialStorePath, machineUUID)
	} else {
		fmt.Fprintf(os.Stderr, "warning: machine identity resolution failed (%v), credentials will not persist across invocations\n", err)
		store = credstore.NewMemoryStore()
	}

	oauthClient := oauth.NewClient(httpClient, clock, cfg.Auth.ClientID, cfg.Auth.Scope, cfg.Auth.DeviceURL, cfg.Auth.TokenURL)
	sessionClient := session.NewClient(httpClient, cfg.Auth.AccountDataBase, cfg.Auth.SessionsBase)

	mgr := authmanager.New(oauthClient, sessionClient, store, clock, cfg.Server.CertFingerprint, cfg.Server.Audience, logger)
	return mgr, store, cfg, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}
	return cfg, nil
}
