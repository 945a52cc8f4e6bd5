// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package cmd

import (
	"fmt"

	"github.com/rcnlabs/rcn/pkg/rcn"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Radio identity flags
	bandMHz int
	groupID uint8
	nodeID  uint8

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rcn",
	Short: "Remote Channel Network node tool",
	Long: `rcn - tooling for Remote Channel Network hosts and controllers.

RCN lets remote controllers read and adjust channels (byte-valued
resources) exposed by hosts across a shared packet radio group. This
tool talks to an attached radio modem and can run a host, drive a
controller, or passively monitor the group.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 57600]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the RCN_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell
history.`,
	Version: "1.0.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 57600, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Radio identity flags
	rootCmd.PersistentFlags().IntVar(&bandMHz, "band", 868, "Radio band in MHz (433, 868 or 915)")
	rootCmd.PersistentFlags().Uint8VarP(&groupID, "group", "g", 212, "Network group id (1..212)")
	rootCmd.PersistentFlags().Uint8VarP(&nodeID, "node", "n", 2, "This node's id (1..30)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// radioConfig assembles an rcn.Config from the persistent flags.
func radioConfig(maxChannels int) (rcn.Config, error) {
	var band rcn.Band
	switch bandMHz {
	case 433:
		band = rcn.Band433MHz
	case 868:
		band = rcn.Band868MHz
	case 915:
		band = rcn.Band915MHz
	default:
		return rcn.Config{}, fmt.Errorf("unsupported band %d MHz (use 433, 868 or 915)", bandMHz)
	}
	return rcn.Config{
		Band:        band,
		Group:       groupID,
		NodeID:      nodeID,
		MaxChannels: maxChannels,
	}, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
