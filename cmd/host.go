// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rcnlabs/rcn/pkg/rcn"
	"github.com/spf13/cobra"
)

var (
	hostConfigPath string
	hostStatePath  string
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run an RCN host serving the channels in a config file",
	Long: `Run a host node: own the authoritative state for a set of channels,
service update requests from controllers, and broadcast a status update
for every processed request.

Channels are declared in a TOML config file:

    [[channel]]
    name = "volume"
    range = 100
    initial = 40
    aux = 0

With --state, current levels are saved on shutdown and restored (and
re-broadcast) on the next start.

This command drives a pass-through filter: every requested level within
range is adopted. Embedders wanting to veto or shape updates use
pkg/rcn directly with their own Filter.`,
	RunE: runHost,
}

func init() {
	hostCmd.Flags().StringVarP(&hostConfigPath, "config", "c", "", "Channel config file (TOML)")
	hostCmd.Flags().StringVar(&hostStatePath, "state", "", "Level snapshot file (optional)")
	hostCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(hostCmd)
}

// hostConfig is the TOML schema for `rcn host`.
type hostConfig struct {
	Channel []channelConfig `toml:"channel"`
}

type channelConfig struct {
	Name    string `toml:"name"`
	Range   uint8  `toml:"range"`
	Initial uint8  `toml:"initial"`
	Aux     uint8  `toml:"aux"`
}

func loadHostConfig(path string) (*hostConfig, error) {
	var cfg hostConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("reading host config %s: %w", path, err)
	}
	if len(cfg.Channel) == 0 {
		return nil, fmt.Errorf("host config %s declares no channels", path)
	}
	if len(cfg.Channel) > rcn.MaxChannels {
		return nil, fmt.Errorf("host config %s declares %d channels (max %d)",
			path, len(cfg.Channel), rcn.MaxChannels)
	}
	return &cfg, nil
}

func runHost(cmd *cobra.Command, args []string) error {
	chCfg, err := loadHostConfig(hostConfigPath)
	if err != nil {
		return err
	}

	modem, connInfo, err := openModem()
	if err != nil {
		return err
	}
	defer modem.Close()

	cfg, err := radioConfig(len(chCfg.Channel))
	if err != nil {
		return err
	}

	log := newLogger()
	host, err := rcn.NewHost(cfg, modem, rcn.PassFilter, log)
	if err != nil {
		return err
	}

	for _, ch := range chCfg.Channel {
		id, err := host.AddChannel(ch.Range, ch.Initial, ch.Aux)
		if err != nil {
			return fmt.Errorf("adding channel %q: %w", ch.Name, err)
		}
		log.Printf("rcn host: channel %d (%s) range %d initial %d", id, ch.Name, ch.Range, ch.Initial)
		// Drain the seeding broadcast so a full config (up to 128
		// channels) never overruns the 16-slot send queue.
		host.Run()
	}

	if hostStatePath != "" {
		if f, err := os.Open(hostStatePath); err == nil {
			err = host.RestoreLevels(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("restoring levels: %w", err)
			}
			log.Printf("rcn host: levels restored from %s", hostStatePath)
		} else if !os.IsNotExist(err) {
			return err
		}
	}

	fmt.Printf("rcn host - node %d.%d @ %s, %d channels\n",
		cfg.Group, cfg.NodeID, cfg.Band, host.NumChannels())
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if hostStatePath != "" {
				if err := saveLevels(host, hostStatePath); err != nil {
					return err
				}
			}
			fmt.Println()
			fmt.Print(host.Node().Stats().String())
			return nil
		case <-ticker.C:
			host.Run()
		}
	}
}

func saveLevels(host *rcn.Host, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot %s: %w", path, err)
	}
	if err := host.SaveLevels(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
