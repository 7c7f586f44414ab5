// Package main is the entry point for the parley chat TUI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/chattui"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/logging"
	"github.com/parleychat/parley/internal/store"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var _ = []string{commit, date}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		roomID     string
		theme      string
		dbPath     string
		seed       int
	)

	cmd := &cobra.Command{
		Use:     "parley [room]",
		Short:   "parley is a terminal chat client",
		Args:    cobra.MaximumNArgs(1),
		Version: version,
		RunE: func(_ *cobra.Command, args []string) error {
			loader := config.NewLoader()
			if configFile != "" {
				loader.SetConfigFile(configFile)
			}
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			if theme != "" {
				cfg.TUI.Theme = theme
			}
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}
			if len(args) == 1 {
				roomID = args[0]
			}
			if roomID == "" {
				roomID = "lobby"
			}

			initLogging(cfg)

			if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			st, err := store.Open(cfg.Database.Path, cfg.Database.BusyTimeoutMs)
			if err != nil {
				return err
			}
			defer st.Close()

			if seed > 0 {
				if err := seedRoom(st, roomID, seed); err != nil {
					return err
				}
			}

			return chattui.Run(chattui.Config{
				RoomID:         roomID,
				Sender:         cfg.Global.Sender,
				Theme:          cfg.TUI.Theme,
				PageSize:       cfg.Timeline.PageSize,
				ThrottleWindow: cfg.Timeline.ThrottleWindow,
				Store:          st,
			})
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&roomID, "room", "r", "", "room to open")
	cmd.Flags().StringVarP(&theme, "theme", "t", "", "color theme (default, high-contrast)")
	cmd.Flags().StringVar(&dbPath, "db", "", "message database path")
	cmd.Flags().IntVar(&seed, "seed", 0, "seed the room with N demo messages when empty")

	return cmd
}

// initLogging routes logs to the configured file. While the TUI owns the
// terminal, logging to stderr would corrupt the screen, so without a file
// logs are discarded.
func initLogging(cfg *config.Config) {
	var out io.Writer = io.Discard
	if cfg.Logging.File != "" {
		if f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			out = f
		}
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
}

func seedRoom(st *store.Store, roomID string, n int) error {
	ctx := context.Background()
	count, err := st.CountRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	senders := []string{"ada", "grace", "linus"}
	for i := 0; i < n; i++ {
		msg := chat.NewMessage(roomID, senders[i%len(senders)], fmt.Sprintf("seed message %d", i+1))
		if err := st.Append(ctx, &msg); err != nil {
			return err
		}
	}
	return nil
}
