// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

// rcn - Remote Channel Network node tool
//
// Runs RCN hosts and controllers against an attached radio modem, and
// provides monitoring and debugging commands for the protocol.

package main

import (
	"fmt"
	"os"

	"github.com/rcnlabs/rcn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
