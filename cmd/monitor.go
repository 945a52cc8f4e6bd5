// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rcnlabs/rcn/pkg/rcn"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display all RCN packets on the group in human-readable form",
	Long: `Continuously decode and display RCN packets as they arrive.

Every frame the modem hears is shown with its message kind (SR, UR, SU),
addressing and decoded payload. Packet statistics are printed on exit.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// pollInterval paces the cooperative poll loop; the protocol itself
// never blocks.
const pollInterval = time.Millisecond

func runMonitor(cmd *cobra.Command, args []string) error {
	modem, connInfo, err := openModem()
	if err != nil {
		return err
	}
	defer modem.Close()

	cfg, err := radioConfig(rcn.MaxChannels)
	if err != nil {
		return err
	}
	node, err := rcn.NewNode(cfg, modem, newLogger())
	if err != nil {
		return err
	}

	fmt.Printf("rcn monitor - group %d @ %s\n", cfg.Group, cfg.Band)
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			fmt.Print(node.Stats().String())
			return nil
		case <-ticker.C:
			if p := node.Poll(); p != nil {
				fmt.Println(rcn.FormatPacket(p))
			}
		}
	}
}
