// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package serialmodem

import (
	"fmt"
	"io"
	"sync"

	"github.com/rcnlabs/rcn/pkg/rcn"
)

// rxBufFrames bounds the inbound frame buffer; like a real receiver,
// frames arriving while the buffer is full are lost.
const rxBufFrames = 16

// Modem drives an RCN radio modem over any byte stream (a serial port,
// or a websocket wrapped as an io.ReadWriteCloser). It satisfies
// rcn.Transport.
//
// A single reader goroutine feeds decoded frames into a buffered
// channel; the Node's poll step is the only consumer, so the
// single-writer/single-reader discipline the protocol requires is kept.
type Modem struct {
	conn io.ReadWriteCloser
	log  rcn.Logger

	rx      chan Frame
	pending *Frame

	mu       sync.Mutex
	sleeping bool
	closed   bool
}

// New starts a modem on the given stream. log may be nil.
func New(conn io.ReadWriteCloser, log rcn.Logger) *Modem {
	m := &Modem{
		conn: conn,
		log:  log,
		rx:   make(chan Frame, rxBufFrames),
	}
	go m.readLoop()
	return m
}

func (m *Modem) logf(format string, v ...interface{}) {
	if m.log != nil {
		m.log.Printf(format, v...)
	}
}

func (m *Modem) readLoop() {
	dec := NewDecoder()
	buf := make([]byte, 128)
	for {
		n, err := m.conn.Read(buf)
		if err != nil {
			m.mu.Lock()
			m.closed = true
			m.mu.Unlock()
			if err != io.EOF {
				m.logf("serialmodem: read error: %v", err)
			}
			return
		}
		for i := 0; i < n; i++ {
			frame, err := dec.DecodeByte(buf[i])
			if err != nil {
				m.logf("%v", err)
				continue
			}
			if frame == nil {
				continue
			}
			m.mu.Lock()
			asleep := m.sleeping
			m.mu.Unlock()
			if asleep {
				continue // radio is off; the frame never existed
			}
			select {
			case m.rx <- *frame:
			default:
				m.logf("serialmodem: rx buffer full, frame lost")
			}
		}
	}
}

// CanSend implements rcn.Transport.
func (m *Modem) CanSend() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.sleeping && !m.closed
}

// Send implements rcn.Transport.
func (m *Modem) Send(header byte, payload []byte) error {
	if !m.CanSend() {
		return fmt.Errorf("serialmodem: not ready to send")
	}
	frame, err := EncodeFrame(header, payload)
	if err != nil {
		return err
	}
	if _, err := m.conn.Write(frame); err != nil {
		return fmt.Errorf("serialmodem: write: %w", err)
	}
	return nil
}

// ReceiveReady implements rcn.Transport.
func (m *Modem) ReceiveReady() bool {
	if m.pending != nil {
		return true
	}
	select {
	case f := <-m.rx:
		m.pending = &f
		return true
	default:
		return false
	}
}

// LastReceived implements rcn.Transport, consuming the pending frame.
func (m *Modem) LastReceived() (byte, []byte, bool) {
	if m.pending == nil && !m.ReceiveReady() {
		return 0, nil, false
	}
	f := m.pending
	m.pending = nil
	return f.Header, f.Payload[:], f.CRCValid
}

// Sleep implements rcn.Transport. Frames decoded while asleep are
// discarded.
func (m *Modem) Sleep() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeping = true
	return nil
}

// Wake implements rcn.Transport.
func (m *Modem) Wake() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeping = false
	return nil
}

// Close shuts the underlying stream down.
func (m *Modem) Close() error {
	return m.conn.Close()
}
