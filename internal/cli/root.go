// Package cli implements the btclient command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/bluetrace-go/internal/beacon"
	"github.com/mcoot/bluetrace-go/internal/client"
	"github.com/mcoot/bluetrace-go/internal/contactlog"
	"github.com/mcoot/bluetrace-go/internal/dependencies/clock"
)

var contactLogPath string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "btclient <server host> <server port> <beacon port>",
		Short: "BlueTrace simulator client",
		Long: `btclient connects to a BlueTrace central server and runs an interactive
session: authenticate, download temp IDs, exchange beacons with nearby
clients over UDP, and upload the local contact log.

The beacon port is the local UDP port this client listens on for beacons
from other clients.`,
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE:         runClient,
	}

	rootCmd.Flags().StringVar(&contactLogPath, "contact-log", "contactlog.txt", "Path to the local contact log file")

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func runClient(cmd *cobra.Command, args []string) error {
	serverHost := args[0]
	serverPort, err := parsePort(args[1])
	if err != nil {
		return fmt.Errorf("invalid server port %q: %w", args[1], err)
	}
	beaconPort, err := parsePort(args[2])
	if err != nil {
		return fmt.Errorf("invalid beacon port %q: %w", args[2], err)
	}

	// Interactive output goes to stdout; logs must not interleave with it.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	log := contactlog.NewFileLog(contactLogPath)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Central role: listen for beacons from other clients for the lifetime
	// of the session.
	central := beacon.NewCentral(log, logger)
	centralErr := make(chan error, 1)
	go func() {
		centralErr <- central.Start(ctx, fmt.Sprintf(":%d", beaconPort))
	}()

	serverAddr := net.JoinHostPort(serverHost, strconv.Itoa(serverPort))
	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", serverAddr, err)
	}
	defer func() { _ = conn.Close() }()

	c := client.New(
		conn,
		client.DefaultConfig(),
		clock.New(),
		log,
		beacon.NewPeripheral(logger),
		os.Stdin,
		os.Stdout,
		logger,
	)

	runErr := c.Run(ctx)

	cancel()
	_ = central.Close()
	if err := <-centralErr; err != nil {
		logger.Warn("beacon listener error", slog.String("error", err.Error()))
	}
	return runErr
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range")
	}
	return port, nil
}
