// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

// Package serialmodem adapts a byte-stream link to an attached RCN
// radio modem into the rcn.Transport contract.
//
// The modem speaks fixed-size framed packets over the stream:
//
//	START | header | payload[2] | CRC16-CCITT (2, big-endian) | END
//
// with 0x7E/0x7F/0x7D byte stuffing applied to everything between the
// framing bytes. The CRC covers header and payload; its validity is
// what LastReceived reports, per the transport contract.
package serialmodem

import "fmt"

// Framing bytes.
const (
	StartByte = 0x7E
	EndByte   = 0x7F
	EscByte   = 0x7D
	EscXor    = 0x20
)

// CRC-16-CCITT configuration.
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

const (
	payloadSize = 2
	dataSize    = 1 + payloadSize // header + payload, the CRC'd section
	crcSize     = 2
)

// Frame is one decoded modem frame.
type Frame struct {
	Header   byte
	Payload  [payloadSize]byte
	CRC      uint16
	CRCValid bool
}

// CalculateCRC computes the CRC-16-CCITT checksum of data.
func CalculateCRC(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// EncodeFrame builds the on-stream bytes for one packet, including
// framing, CRC and byte stuffing. payload must be 2 bytes.
func EncodeFrame(header byte, payload []byte) ([]byte, error) {
	if len(payload) != payloadSize {
		return nil, fmt.Errorf("serialmodem: payload must be %d bytes, got %d", payloadSize, len(payload))
	}

	data := make([]byte, 0, dataSize+crcSize)
	data = append(data, header)
	data = append(data, payload...)
	crc := CalculateCRC(data)
	data = append(data, byte(crc>>8), byte(crc&0xFF))

	stuffed := stuffBytes(data)

	frame := make([]byte, 0, len(stuffed)+2)
	frame = append(frame, StartByte)
	frame = append(frame, stuffed...)
	frame = append(frame, EndByte)
	return frame, nil
}

// stuffBytes escapes framing bytes: START, END and ESC become
// ESC + (byte XOR EscXor).
func stuffBytes(data []byte) []byte {
	result := make([]byte, 0, len(data)*2)
	for _, b := range data {
		if b == StartByte || b == EndByte || b == EscByte {
			result = append(result, EscByte, b^EscXor)
		} else {
			result = append(result, b)
		}
	}
	return result
}

// Decoder states.
const (
	stateIdle = iota
	stateHeader
	statePayload
	stateCRC1
	stateCRC2
	stateEnd
)

// Decoder is the byte-at-a-time frame decoder state machine. Garbage
// between frames is skipped; a START byte always resynchronizes.
type Decoder struct {
	state        int
	escapeNext   bool
	payloadBytes int
	frame        Frame
}

// NewDecoder creates a decoder in the idle state.
func NewDecoder() *Decoder {
	return &Decoder{state: stateIdle}
}

// Reset returns the decoder to idle.
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.escapeNext = false
	d.payloadBytes = 0
	d.frame = Frame{}
}

// DecodeByte feeds one stream byte through the state machine. A
// non-nil Frame means a complete frame arrived; CRCValid tells whether
// its checksum verified (a CRC mismatch is a completed frame, not a
// decode error, so the transport can report it). A non-nil error means
// a framing violation; the decoder has already resynchronized.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	if b == EscByte && !d.escapeNext {
		d.escapeNext = true
		return nil, nil
	}

	originalB := b
	if d.escapeNext {
		b ^= EscXor
		d.escapeNext = false
	} else {
		if originalB == StartByte {
			d.Reset()
			d.state = stateHeader
			return nil, nil
		}
		if originalB == EndByte {
			if d.state == stateEnd {
				f := d.frame
				f.CRCValid = f.CRC == CalculateCRC([]byte{f.Header, f.Payload[0], f.Payload[1]})
				d.Reset()
				return &f, nil
			}
			state := d.state
			d.Reset()
			if state == stateIdle {
				return nil, nil
			}
			return nil, fmt.Errorf("serialmodem: unexpected END byte in state %d", state)
		}
	}

	switch d.state {
	case stateIdle:
		// Waiting for START; skip noise.
		return nil, nil

	case stateHeader:
		d.frame.Header = b
		d.state = statePayload
		return nil, nil

	case statePayload:
		d.frame.Payload[d.payloadBytes] = b
		d.payloadBytes++
		if d.payloadBytes == payloadSize {
			d.state = stateCRC1
		}
		return nil, nil

	case stateCRC1:
		d.frame.CRC = uint16(b) << 8
		d.state = stateCRC2
		return nil, nil

	case stateCRC2:
		d.frame.CRC |= uint16(b)
		d.state = stateEnd
		return nil, nil

	case stateEnd:
		// Only END is legal here; anything else is an oversized frame.
		d.Reset()
		return nil, fmt.Errorf("serialmodem: frame too long")

	default:
		d.Reset()
		return nil, fmt.Errorf("serialmodem: invalid state %d", d.state)
	}
}
