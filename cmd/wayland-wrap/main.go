// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// wayland-wrap runs a command behind a transparent Wayland socket
// relay. It binds a substitute display socket, points the child's
// WAYLAND_DISPLAY at it, and forwards every connection — bytes and
// passed file descriptors alike — to the real compositor socket.
//
// Usage:
//
//	wayland-wrap [flags] <command> [args...]
//
// The relay exits 0 once the child has terminated and the last relayed
// connection has closed.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/wayland-wrap/lib/config"
	"github.com/bureau-foundation/wayland-wrap/lib/launch"
	"github.com/bureau-foundation/wayland-wrap/lib/process"
	"github.com/bureau-foundation/wayland-wrap/lib/version"
	"github.com/bureau-foundation/wayland-wrap/lib/wrapsocket"
	"github.com/bureau-foundation/wayland-wrap/relay"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("wayland-wrap", pflag.ContinueOnError)
	// The wrapped command's own flags must pass through untouched:
	// parsing stops at the first non-flag argument.
	flagSet.SetInterspersed(false)
	configPath := flagSet.String("config", "", "path to YAML config file (default: $WAYLAND_WRAP_CONFIG)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("wayland-wrap")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	command := flagSet.Args()
	if len(command) == 0 {
		printHelp(flagSet)
		return fmt.Errorf("no command given")
	}

	if *configPath == "" {
		*configPath = os.Getenv("WAYLAND_WRAP_CONFIG")
	}
	configuration, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logLevel, err := configuration.Log.SlogLevel()
	if err != nil {
		return err
	}
	if os.Getenv("WAYLAND_WRAP_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	paths, err := wrapsocket.FromEnvironment(os.Getpid())
	if err != nil {
		return err
	}

	// Bind the substitute socket before the child starts, so the
	// child's first connect cannot race the relay.
	loop, err := relay.New(relay.Options{
		ListenPath:  paths.SubstitutePath,
		ServerPath:  paths.RealPath,
		ChunkSize:   configuration.Relay.ChunkSize,
		PollTimeout: time.Duration(configuration.Relay.PollTimeout),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	logger.Info("relay started",
		"real_socket", paths.RealPath,
		"substitute_socket", paths.SubstitutePath,
		"command", command[0])

	child, err := launch.Start(command[0], command[1:], paths.SubstituteName, logger)
	if err != nil {
		loop.Close()
		return err
	}

	return loop.Run(child.Done())
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Print(`wayland-wrap - transparent Wayland socket relay

USAGE
    wayland-wrap [flags] <command> [args...]

The command runs with WAYLAND_DISPLAY pointing at a substitute socket;
every connection it opens is forwarded byte-for-byte (including passed
file descriptors) to the real compositor socket. The relay exits 0
once the command has terminated and all connections have closed.

FLAGS
`)
	fmt.Print(flagSet.FlagUsages())
	fmt.Print(`
ENVIRONMENT
    WAYLAND_DISPLAY      Display name or absolute socket path (required)
    XDG_RUNTIME_DIR      Runtime directory for the sockets (required)
    WAYLAND_WRAP_CONFIG  Config file path (when --config is not given)
    WAYLAND_WRAP_DEBUG   Enable debug logging
`)
}
