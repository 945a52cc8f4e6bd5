// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rcnlabs/rcn/pkg/rcn"
	"github.com/rcnlabs/rcn/pkg/serialmodem"
	"github.com/spf13/cobra"
)

var (
	codecDirected bool
	codecNode     uint8
	codecChannel  uint8
	codecRelative bool
	codecValue    int
	codecDecode   string
)

var codecCmd = &cobra.Command{
	Use:   "codec",
	Short: "Encode or decode RCN packets offline",
	Long: `Debugging aid for the wire format. Without --decode, encodes a packet
from the flags and prints the payload plus the full modem frame as hex.
With --decode, parses a hex modem frame and prints its meaning.

Examples:
  rcn codec --directed --to 1 --channel 3 --relative --value 15
  rcn codec --decode 7e4283370f477f`,
	RunE: runCodec,
}

func init() {
	codecCmd.Flags().BoolVar(&codecDirected, "directed", false, "Directed packet (update request)")
	codecCmd.Flags().Uint8Var(&codecNode, "to", 1, "Node id in the header")
	codecCmd.Flags().Uint8Var(&codecChannel, "channel", 0, "Channel id")
	codecCmd.Flags().BoolVar(&codecRelative, "relative", false, "Relative value")
	codecCmd.Flags().IntVar(&codecValue, "value", 0, "Value (0..255 absolute, -128..127 relative)")
	codecCmd.Flags().StringVar(&codecDecode, "decode", "", "Hex modem frame to decode")
	rootCmd.AddCommand(codecCmd)
}

func runCodec(cmd *cobra.Command, args []string) error {
	if codecDecode != "" {
		return decodeHexFrame(codecDecode)
	}

	var value byte
	if codecRelative {
		if codecValue < -128 || codecValue > 127 {
			return fmt.Errorf("relative value %d out of range -128..127", codecValue)
		}
		value = byte(int8(codecValue))
	} else {
		if codecValue < 0 || codecValue > 255 {
			return fmt.Errorf("absolute value %d out of range 0..255", codecValue)
		}
		value = byte(codecValue)
	}

	header := rcn.EncodeHeader(codecDirected, codecNode)
	payload := rcn.EncodePayload(codecRelative, codecChannel, value)
	frame, err := serialmodem.EncodeFrame(header, payload[:])
	if err != nil {
		return err
	}

	pkt, err := rcn.DecodePayload(header, payload[:])
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", rcn.FormatPacket(&pkt))
	fmt.Printf("header:  %02x\n", header)
	fmt.Printf("payload: %s\n", hex.EncodeToString(payload[:]))
	fmt.Printf("frame:   %s\n", hex.EncodeToString(frame))
	return nil
}

func decodeHexFrame(s string) error {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid hex: %v", err)
	}

	dec := serialmodem.NewDecoder()
	found := false
	for _, b := range data {
		frame, err := dec.DecodeByte(b)
		if err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			continue
		}
		if frame == nil {
			continue
		}
		found = true
		if !frame.CRCValid {
			fmt.Printf("CRC mismatch (got 0x%04X)\n", frame.CRC)
			continue
		}
		pkt, err := rcn.DecodePayload(frame.Header, frame.Payload[:])
		if err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			continue
		}
		fmt.Printf("%s\n", rcn.FormatPacket(&pkt))
	}
	if !found {
		return fmt.Errorf("no complete frame in input")
	}
	return nil
}
