package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"stockdeck/internal/config"
	"stockdeck/internal/session"
)

// app holds the state shared by every command: configuration, persisted
// client state, and the session store.
type app struct {
	cfg       *config.Config
	storage   *session.Storage
	session   *session.Store
	serverURL string
}

var cli = &app{}

var rootCmd = &cobra.Command{
	Use:   "stockdeck",
	Short: "Inventory dashboard client",
	Long: `Stockdeck is a terminal client for the inventory management backend.

It keeps a persisted session (durable or per-OS-session), follows the
real-time inventory update channel, and exposes the catalog, inventory,
store, and account operations of the API.`,
	SilenceUsage:      true,
	SilenceErrors:     false,
	PersistentPreRunE: setup,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cli.cfg = cfg

	durableDir, err := cfg.Client.ResolveStateDir()
	if err != nil {
		return err
	}
	sessionDir, err := cfg.Client.ResolveSessionDir()
	if err != nil {
		return err
	}
	cli.storage = session.NewStorage(durableDir, sessionDir)

	// A persisted server selection overrides the configured endpoint.
	cli.serverURL = cfg.Client.ServerURL
	if url, ok := cli.storage.ReadServer(); ok {
		cli.serverURL = url
	}

	cli.session = session.New(cli.serverURL, cli.storage)
	return nil
}

// requireSession restores the persisted session and fails if none exists.
// Commands that need a client call this before doing work.
func requireSession() (*session.Store, error) {
	stored := cli.storage.ReadAuth()
	if stored == nil {
		return nil, fmt.Errorf("not logged in; run 'stockdeck login' first")
	}
	cli.session.Restore()
	return cli.session, nil
}

// table returns a tabwriter over stdout. Callers flush it themselves.
func table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
