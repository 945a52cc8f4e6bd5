// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rcnlabs/rcn/pkg/rcn"
	"github.com/spf13/cobra"
)

var scanDuration time.Duration

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Passively inventory hosts and channels from overheard broadcasts",
	Long: `Listen for status-update broadcasts and build an inventory of the
hosts and channels active in the group.

RCN has no discovery messages; this command only observes the traffic
hosts produce anyway, so an idle group shows nothing. Poke a host (or
wait for controllers to do so) to populate the listing.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanDuration, "duration", 30*time.Second, "How long to listen")
	rootCmd.AddCommand(scanCmd)
}

type seenChannel struct {
	level    uint8
	lastSeen time.Time
	updates  int
}

func runScan(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("rcn scan - group %d @ %s, listening for %s\n", cfg.Group, cfg.Band, scanDuration)
	fmt.Printf("Connection: %s\n\n", connInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// host id -> channel id -> last observed state
	seen := make(map[uint8]map[uint8]*seenChannel)

	deadline := time.After(scanDuration)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

listen:
	for {
		select {
		case <-ctx.Done():
			break listen
		case <-deadline:
			break listen
		case <-ticker.C:
			p := node.Poll()
			if p == nil || !p.Broadcast() || p.Relative() {
				continue
			}
			host := p.NodeID()
			if seen[host] == nil {
				seen[host] = make(map[uint8]*seenChannel)
			}
			sc := seen[host][p.Channel()]
			if sc == nil {
				sc = &seenChannel{}
				seen[host][p.Channel()] = sc
				fmt.Printf("new: host %d channel %d level %d\n", host, p.Channel(), p.AbsLevel())
			}
			sc.level = p.AbsLevel()
			sc.lastSeen = time.Now()
			sc.updates++
		}
	}

	if len(seen) == 0 {
		fmt.Println("No status updates heard.")
		return nil
	}

	fmt.Printf("\n%-6s %-8s %-6s %-8s %s\n", "HOST", "CHANNEL", "LEVEL", "UPDATES", "LAST SEEN")
	hosts := make([]int, 0, len(seen))
	for h := range seen {
		hosts = append(hosts, int(h))
	}
	sort.Ints(hosts)
	for _, h := range hosts {
		channels := make([]int, 0, len(seen[uint8(h)]))
		for ch := range seen[uint8(h)] {
			channels = append(channels, int(ch))
		}
		sort.Ints(channels)
		for _, ch := range channels {
			sc := seen[uint8(h)][uint8(ch)]
			fmt.Printf("%-6d %-8d %-6d %-8d %s\n",
				h, ch, sc.level, sc.updates, sc.lastSeen.Format("15:04:05.000"))
		}
	}
	return nil
}
