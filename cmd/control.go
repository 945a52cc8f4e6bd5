// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rcnlabs/rcn/pkg/rcn"
	"github.com/spf13/cobra"
)

var (
	ctlHost     uint8
	ctlConfig   string
	ctlChannels int
	ctlRange    uint8
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for controlling a host's channels",
	Long: `Control an RCN host's channels via an interactive terminal UI.

The controller mirrors the host's channels, updates its cache
optimistically on every keypress and reconciles from the host's
status-update broadcasts. Channel names and ranges come from the same
TOML file the host uses (--config), or from --channels/--range for a
quick uniform table.

Keys:
  up/down      select channel        +/-    adjust level
  s            type an absolute level, enter to send
  r            re-sync selected channel from the host
  z            sleep/wake (wake resets the cache until broadcasts arrive)
  q            quit

Supports both serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	controlCmd.Flags().Uint8Var(&ctlHost, "host", 1, "Host node id (1..30)")
	controlCmd.Flags().StringVarP(&ctlConfig, "config", "c", "", "Channel config file (TOML, same schema as 'rcn host')")
	controlCmd.Flags().IntVar(&ctlChannels, "channels", 4, "Number of channels when no config file is given")
	controlCmd.Flags().Uint8Var(&ctlRange, "range", 255, "Uniform channel range when no config file is given")
	rootCmd.AddCommand(controlCmd)
}

// ctrlCmd is one user action forwarded to the controller loop, which is
// the only goroutine touching the rcn.Controller.
type ctrlCmd struct {
	kind    ctrlCmdKind
	channel uint8
	value   int
}

type ctrlCmdKind int

const (
	ctrlSet ctrlCmdKind = iota
	ctrlAdjust
	ctrlSync
	ctrlSleep
	ctrlWake
)

// controlManager owns the controller loop and its link to the TUI.
type controlManager struct {
	ctrl *rcn.Controller
	cmds chan ctrlCmd
	p    *tea.Program
	done chan struct{}
}

// levelMsg reports a cache write (optimistic or confirmed) to the TUI.
type levelMsg struct {
	channel uint8
	level   uint8
}

// statsMsg carries periodic queue/statistics refreshes to the TUI.
type statsMsg struct {
	queued   int
	sent     uint64
	received uint64
	errors   uint64
}

func runControl(cmd *cobra.Command, args []string) error {
	channels, err := controlChannels()
	if err != nil {
		return err
	}

	modem, connInfo, err := openModem()
	if err != nil {
		return err
	}
	defer modem.Close()

	cfg, err := radioConfig(len(channels))
	if err != nil {
		return err
	}

	cm := &controlManager{
		cmds: make(chan ctrlCmd, 8),
		done: make(chan struct{}),
	}

	notifier := rcn.NotifierFunc(func(channel, _, _, _, newLevel uint8) {
		if cm.p != nil {
			cm.p.Send(levelMsg{channel: channel, level: newLevel})
		}
	})

	ctrl, err := rcn.NewController(cfg, ctlHost, modem, notifier, newLogger())
	if err != nil {
		return err
	}
	cm.ctrl = ctrl

	for _, ch := range channels {
		if _, err := ctrl.AddChannel(ch.Range, ch.Initial, ch.Aux); err != nil {
			return fmt.Errorf("adding channel %q: %w", ch.Name, err)
		}
		// Drain the registration status request so large channel
		// tables never overrun the send queue.
		ctrl.Run()
	}

	m := initialControlModel(cm, connInfo, channels)
	p := tea.NewProgram(m, tea.WithAltScreen())
	cm.p = p

	go cm.loop()

	if _, err := p.Run(); err != nil {
		close(cm.done)
		return fmt.Errorf("TUI error: %v", err)
	}
	close(cm.done)
	return nil
}

// controlChannels resolves the channel table from --config or the
// uniform flags.
func controlChannels() ([]channelConfig, error) {
	if ctlConfig != "" {
		cfg, err := loadHostConfig(ctlConfig)
		if err != nil {
			return nil, err
		}
		return cfg.Channel, nil
	}
	if ctlChannels < 1 || ctlChannels > rcn.MaxChannels {
		return nil, fmt.Errorf("--channels %d out of range 1..%d", ctlChannels, rcn.MaxChannels)
	}
	channels := make([]channelConfig, ctlChannels)
	for i := range channels {
		channels[i] = channelConfig{
			Name:  fmt.Sprintf("channel %d", i),
			Range: ctlRange,
		}
	}
	return channels, nil
}

// loop drives the controller: it applies user commands and polls the
// node, all from a single goroutine so the protocol core stays
// single-threaded.
func (cm *controlManager) loop() {
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	stats := time.NewTicker(250 * time.Millisecond)
	defer stats.Stop()

	for {
		select {
		case <-cm.done:
			return

		case c := <-cm.cmds:
			switch c.kind {
			case ctrlSet:
				cm.ctrl.Set(c.channel, c.value)
			case ctrlAdjust:
				cm.ctrl.Adjust(c.channel, c.value)
			case ctrlSync:
				cm.ctrl.Sync(c.channel)
			case ctrlSleep:
				cm.ctrl.Sleep()
			case ctrlWake:
				cm.ctrl.Wake(true)
			}

		case <-poll.C:
			cm.ctrl.Run()

		case <-stats.C:
			s := cm.ctrl.Node().Stats()
			cm.p.Send(statsMsg{
				queued:   cm.ctrl.Node().QueueLen(),
				sent:     s.Sent,
				received: s.Received,
				errors:   s.CRCErrors + s.Malformed + s.UnknownChannel + s.InvalidKind + s.QueueDrops,
			})
		}
	}
}

// send forwards a user action without ever blocking the TUI.
func (cm *controlManager) send(c ctrlCmd) {
	select {
	case cm.cmds <- c:
	default:
	}
}
