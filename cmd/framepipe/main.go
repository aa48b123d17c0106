// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Framepipe drives the engine's frame loop, either in a
// window or headless, and reports frame statistics.
//
// Usage:
//
//	framepipe run [flags]
//	framepipe drivers
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gviegas/rendercore/engine"
)

// logFlags are the verbosity flags shared by every
// command.
type logFlags struct {
	verbose int
	quiet   bool
}

// level returns the log level selected by the flags,
// or by cfgLevel if no flag was given.
// Verbosity takes precedence over quiet.
func (f *logFlags) level(cfgLevel string) slog.Level {
	switch {
	case f.verbose > 1:
		return slog.LevelDebug
	case f.verbose == 1:
		return slog.LevelInfo
	case f.quiet:
		return slog.LevelError
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(cfgLevel))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// setLogger installs a text logger writing to stderr,
// both as the engine's logger and as the default one.
func setLogger(level slog.Level) *slog.Logger {
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	engine.SetLogger(l)
	slog.SetDefault(l)
	return l
}

func newRootCmd() *cobra.Command {
	var lf logFlags
	root := &cobra.Command{
		Use:           "framepipe",
		Short:         "Run the frame pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.CountVarP(&lf.verbose, "verbose", "v", "log informational messages (-vv for debug)")
	pf.BoolVarP(&lf.quiet, "quiet", "q", false, "log errors only")
	root.AddCommand(newRunCmd(&lf), newDriversCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "framepipe:", err)
		os.Exit(1)
	}
}
