// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

import "errors"

var (
	// ErrMalformedPayload is returned when an inbound payload is not
	// exactly PayloadSize bytes. Every bit pattern of a correctly
	// sized payload is legal, so this is the codec's only failure.
	ErrMalformedPayload = errors.New("malformed payload (must be 2 bytes)")

	// ErrQueueFull is returned when the send queue rejects a new
	// packet. The queue never overwrites an unsent entry; the newest
	// packet is the one dropped.
	ErrQueueFull = errors.New("send queue full, packet dropped")

	// ErrUnknownChannel is returned for channel ids outside the
	// configured table.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrTableFull is returned by AddChannel once the table has
	// reached its configured maximum.
	ErrTableFull = errors.New("channel table full")

	// ErrInvalidUpdateKind marks a broadcast carrying a relative
	// value, which the protocol never produces.
	ErrInvalidUpdateKind = errors.New("broadcast must carry an absolute level")

	// ErrBadConfig is returned for band, group, node id or channel
	// count values outside their legal ranges.
	ErrBadConfig = errors.New("invalid node configuration")

	// ErrBadNodeID is returned when a directed packet names a
	// destination outside NodeMin..NodeMax.
	ErrBadNodeID = errors.New("destination node id out of range")
)
