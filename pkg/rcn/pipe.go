// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

import "sync"

// Bus is an in-memory radio group: every endpoint hears what the others
// transmit, with directed packets delivered only to the addressed node.
// It implements just enough radio semantics to develop and test hosts
// and controllers without hardware.
type Bus struct {
	mu  sync.Mutex
	eps []*PipeTransport
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Endpoint attaches a new transport for the given node id.
func (b *Bus) Endpoint(nodeID uint8) *PipeTransport {
	b.mu.Lock()
	defer b.mu.Unlock()
	ep := &PipeTransport{bus: b, nodeID: nodeID, awake: true}
	b.eps = append(b.eps, ep)
	return ep
}

func (b *Bus) deliver(from *PipeTransport, header byte, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	directed := header&HeaderDST != 0
	dest := header & headerNodeMask
	for _, ep := range b.eps {
		if ep == from || !ep.awake {
			continue
		}
		if directed && ep.nodeID != dest {
			continue
		}
		ep.push(pipeFrame{header: header, payload: append([]byte(nil), payload...), crcOK: true})
	}
}

type pipeFrame struct {
	header  byte
	payload []byte
	crcOK   bool
}

// PipeTransport is one endpoint on a Bus. It satisfies Transport.
//
// The receive buffer is a small bounded ring; like a real radio, frames
// arriving while the buffer is full are simply lost.
type PipeTransport struct {
	bus    *Bus
	nodeID uint8

	mu    sync.Mutex
	rx    []pipeFrame
	awake bool
}

const pipeRxCap = 64

func (t *PipeTransport) push(f pipeFrame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.rx) >= pipeRxCap {
		return
	}
	t.rx = append(t.rx, f)
}

// Inject queues a raw inbound frame, bypassing the bus. Tests use it to
// simulate corruption (crcOK false) and malformed payloads.
func (t *PipeTransport) Inject(header byte, payload []byte, crcOK bool) {
	t.push(pipeFrame{header: header, payload: append([]byte(nil), payload...), crcOK: crcOK})
}

// CanSend implements Transport. The simulated carrier is always free.
func (t *PipeTransport) CanSend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.awake
}

// Send implements Transport by delivering the frame to every other
// awake endpoint the header addresses.
func (t *PipeTransport) Send(header byte, payload []byte) error {
	t.bus.deliver(t, header, payload)
	return nil
}

// ReceiveReady implements Transport.
func (t *PipeTransport) ReceiveReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rx) > 0
}

// LastReceived implements Transport, consuming the oldest frame.
func (t *PipeTransport) LastReceived() (byte, []byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.rx) == 0 {
		return 0, nil, false
	}
	f := t.rx[0]
	t.rx = t.rx[1:]
	return f.header, f.payload, f.crcOK
}

// Sleep implements Transport; a sleeping endpoint neither sends nor
// hears anything.
func (t *PipeTransport) Sleep() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.awake = false
	return nil
}

// Wake implements Transport.
func (t *PipeTransport) Wake() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.awake = true
	return nil
}
