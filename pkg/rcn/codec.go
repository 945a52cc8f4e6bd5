// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

import "fmt"

// The codec is an explicit byte-level encoding, independent of any
// struct layout or host endianness, so that encode/decode round-trips
// are testable and portable.

// EncodePayload packs the relative flag, channel id and value into the
// two-byte wire payload. Channel ids above 127 are masked to 7 bits;
// callers validate ranges before encoding.
func EncodePayload(relative bool, channel uint8, value byte) [PayloadSize]byte {
	b0 := channel & channelMask
	if relative {
		b0 |= flagRelative
	}
	return [PayloadSize]byte{b0, value}
}

// EncodeHeader builds the transport header byte: the DST bit for
// directed packets plus a node id (destination when directed, sender
// when broadcast).
func EncodeHeader(directed bool, node uint8) byte {
	h := node & headerNodeMask
	if directed {
		h |= HeaderDST
	}
	return h
}

// DecodePayload parses one received frame. The only possible failure is
// a payload that is not exactly two bytes; all 256x128x2 bit
// combinations of a well-sized payload are legal packets.
func DecodePayload(header byte, payload []byte) (RecvPacket, error) {
	if len(payload) != PayloadSize {
		return RecvPacket{}, fmt.Errorf("%w: got %d bytes", ErrMalformedPayload, len(payload))
	}
	return RecvPacket{
		header:   header,
		channel:  payload[0] & channelMask,
		relative: payload[0]&flagRelative != 0,
		value:    payload[1],
	}, nil
}

// newStatusUpdate builds a broadcast status-update packet: the only
// legal broadcast form, always absolute.
func newStatusUpdate(sender, channel, level uint8) OutgoingPacket {
	return OutgoingPacket{
		Header:  EncodeHeader(false, sender),
		Payload: EncodePayload(false, channel, level),
	}
}

// newUpdateRequest builds a directed update request, absolute or
// relative. A relative request with delta 0 doubles as a status
// request; hosts service both through the same path.
func newUpdateRequest(host, channel uint8, relative bool, value byte) OutgoingPacket {
	return OutgoingPacket{
		Header:  EncodeHeader(true, host),
		Payload: EncodePayload(relative, channel, value),
	}
}

// clampLevel limits v to 0..rng.
func clampLevel(v int, rng uint8) uint8 {
	if v < 0 {
		return 0
	}
	if v > int(rng) {
		return rng
	}
	return uint8(v)
}

// clampDelta limits d to the signed-byte range carried on the wire.
func clampDelta(d int) int8 {
	if d < -128 {
		return -128
	}
	if d > 127 {
		return 127
	}
	return int8(d)
}
