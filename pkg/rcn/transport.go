// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

// Transport is the radio collaborator a Node drives. Implementations
// own carrier sense, CRC checking, modulation and hardware power
// states; the protocol core never reimplements them.
//
// All methods must be non-blocking: the poll step calls them on every
// iteration of the owner's cooperative loop.
type Transport interface {
	// CanSend reports whether the radio is ready to transmit one
	// packet right now.
	CanSend() bool

	// Send transmits one frame: the header byte followed by the
	// two-byte payload.
	Send(header byte, payload []byte) error

	// ReceiveReady reports whether a received frame is waiting.
	ReceiveReady() bool

	// LastReceived returns the waiting frame and whether its
	// checksum verified. It is only valid after ReceiveReady has
	// reported true, and consumes the frame.
	LastReceived() (header byte, payload []byte, crcOK bool)

	// Sleep powers the radio down; Wake restores it. While asleep
	// nothing is sent or received.
	Sleep() error
	Wake() error
}

// Logger is the optional diagnostic sink. It receives human-readable
// trace lines and never affects protocol behavior. Both the standard
// library logger and logrus satisfy it.
type Logger interface {
	Printf(format string, v ...interface{})
}
