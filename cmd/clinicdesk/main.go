package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicdesk/internal/authstore"
	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/sandbox"
	"github.com/clinicdesk/clinicdesk/pkg/clinic"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinicdesk",
		Short: "Clinic administration toolbox",
	}

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(sandboxCmd())
	rootCmd.AddCommand(resourceCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles everything a command needs: config, logger, the API client,
// and the persisted auth session.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *clinic.Client
	auth   *authstore.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(lvl)
	}

	session, err := authstore.NewFileStorage(filepath.Join(cfg.StateDir, "session"))
	if err != nil {
		return nil, fmt.Errorf("init session storage: %w", err)
	}
	remembered, err := authstore.NewFileStorage(filepath.Join(cfg.StateDir, "local"))
	if err != nil {
		return nil, fmt.Errorf("init remembered storage: %w", err)
	}
	store := authstore.New(session, remembered)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("load auth session: %w", err)
	}

	client := clinic.New(cfg.APIBaseURL,
		clinic.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout()}),
		clinic.WithTokenSource(store),
		clinic.WithLogger(logger),
	)

	return &app{cfg: cfg, log: logger, client: client, auth: store}, nil
}

// printJSON writes the command result to stdout as indented JSON. Everything
// the CLI prints goes through here so output stays scriptable.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func loginCmd() *cobra.Command {
	var remember bool
	cmd := &cobra.Command{
		Use:   "login EMAIL PASSWORD",
		Short: "Authenticate against the clinic API",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.auth.Login(cmd.Context(), a.client, args[0], args[1], remember); err != nil {
				return err
			}
			snap := a.auth.Current()
			a.log.Info().Str("email", snap.User.Email).Bool("remember", remember).Msg("logged in")
			return printJSON(snap.User)
		},
	}
	cmd.Flags().BoolVar(&remember, "remember", true, "persist the session across invocations")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.auth.Logout()
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			snap := a.auth.Current()
			if snap == nil {
				return authstore.ErrNotAuthenticated
			}
			return printJSON(snap.User)
		},
	}
}

func sandboxCmd() *cobra.Command {
	var (
		port     string
		seed     int64
		envelope string
	)
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run the in-memory clinic API for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			if port == "" {
				port = cfg.SandboxPort
			}
			srv := sandbox.New(sandbox.Config{Seed: seed, Envelope: envelope}, logger)
			return srv.Start(":" + port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (defaults to SANDBOX_PORT)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "seed for the synthetic dataset")
	cmd.Flags().StringVar(&envelope, "envelope", sandbox.EnvelopeNested,
		"list response shape: array, items, data, nested, or rotate")
	return cmd
}
