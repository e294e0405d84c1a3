package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/felixgeelhaar/shopnetic/internal/app"
	"github.com/felixgeelhaar/shopnetic/internal/config"
	"github.com/spf13/cobra"
)

// shop is a started client plus the resources a command must release.
type shop struct {
	*app.App
	g   *globalFlags
	out io.Writer
	log io.Closer
}

// openShop loads configuration, restores the saved session and returns a
// client ready for one command.
func openShop(cmd *cobra.Command, g *globalFlags) (*shop, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.apiURL != "" {
		cfg.API.URL = g.apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	dir, err := config.EnsureShopneticDir()
	if err != nil {
		return nil, err
	}

	level := parseLogLevel(cfg.Logging.Level)
	var console io.Writer
	if g.debug {
		level = slog.LevelDebug
		console = cmd.ErrOrStderr()
	}
	logger, logFile, err := setupLogging(config.LogPath(dir), level, console)
	if err != nil {
		return nil, err
	}

	a, err := app.New(app.Options{Config: cfg, Dir: dir, Logger: logger})
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a.Start(cmd.Context())

	return &shop{App: a, g: g, out: cmd.OutOrStdout(), log: logFile}, nil
}

func (s *shop) Close() {
	if err := s.App.Close(); err != nil {
		slog.Warn("close client", "error", err)
	}
	s.log.Close()
}

// finish prints the current view and turns a failed operation into the
// command's error, carrying the banner text.
func (s *shop) finish(ok bool) error {
	v := s.View.Render()

	if s.g.jsonOut {
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
	} else {
		printView(s.out, s.App, v)
	}

	if ok {
		return nil
	}
	if v.Error != "" {
		return errors.New(v.Error)
	}
	if v.Prompt != "" {
		return errors.New(v.Prompt)
	}
	return errors.New("operation failed")
}
