// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

// Package rcn implements the Remote Channel Network node protocol.
//
// RCN lets battery-powered controllers read and adjust named resources
// ("channels") exposed by fixed hosts over a shared, best-effort packet
// radio link. Each channel carries a single-byte level and a declared
// maximum (its range). Hosts own authoritative channel state and answer
// every update request with a status-update broadcast; controllers keep
// a cached mirror and reconcile it from those broadcasts.
//
// The package provides the wire codec, the bounded send queue, the Node
// poll step, and the Host/Controller update algorithms. The physical
// radio is consumed through the narrow Transport interface.
package rcn

// Band selects one of the three fixed radio frequency bands.
type Band uint8

// Radio bands supported by the RFM12B-class transceivers RCN runs on.
const (
	Band433MHz Band = iota + 1
	Band868MHz
	Band915MHz
)

func (b Band) String() string {
	switch b {
	case Band433MHz:
		return "433MHz"
	case Band868MHz:
		return "868MHz"
	case Band915MHz:
		return "915MHz"
	default:
		return "unknown"
	}
}

// Network configuration limits.
const (
	GroupMin = 1
	GroupMax = 212
	NodeMin  = 1
	NodeMax  = 30

	// MaxChannels is the largest channel table any node may declare;
	// channel ids occupy 7 bits on the wire.
	MaxChannels  = 128
	MaxChannelID = MaxChannels - 1
)

// Wire format. The payload is two bytes: byte 1 packs the relative flag
// (bit 7) and the channel id (bits 6..0), byte 2 holds the value as an
// unsigned absolute level or a signed delta, reinterpreted bit for bit.
// The header byte precedes the payload and is carried by the transport:
// the DST bit marks a directed packet, the low bits hold a node id.
const (
	PayloadSize = 2

	flagRelative = 0x80
	channelMask  = 0x7F

	HeaderDST      = 0x40
	headerNodeMask = 0x1F
)

// SendQueueCap is the fixed capacity of a node's outgoing packet queue.
const SendQueueCap = 16
