// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

import (
	"errors"
	"testing"
)

func testConfig(node uint8) Config {
	return Config{Band: Band868MHz, Group: 212, NodeID: node, MaxChannels: MaxChannels}
}

// drainFrames polls an endpoint directly and decodes everything waiting
// in its receive buffer.
func drainFrames(t *testing.T, ep *PipeTransport) []RecvPacket {
	t.Helper()
	var out []RecvPacket
	for ep.ReceiveReady() {
		header, payload, crcOK := ep.LastReceived()
		if !crcOK {
			t.Fatal("pipe delivered a frame with bad CRC")
		}
		p, err := DecodePayload(header, payload)
		if err != nil {
			t.Fatalf("decoding pipe frame: %v", err)
		}
		out = append(out, p)
	}
	return out
}

func TestNewNode_ConfigValidation(t *testing.T) {
	bus := NewBus()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero band", Config{Band: 0, Group: 212, NodeID: 1, MaxChannels: 8}},
		{"unknown band", Config{Band: 7, Group: 212, NodeID: 1, MaxChannels: 8}},
		{"group 0", Config{Band: Band868MHz, Group: 0, NodeID: 1, MaxChannels: 8}},
		{"group 213", Config{Band: Band868MHz, Group: 213, NodeID: 1, MaxChannels: 8}},
		{"node 0", Config{Band: Band868MHz, Group: 212, NodeID: 0, MaxChannels: 8}},
		{"node 31", Config{Band: Band868MHz, Group: 212, NodeID: 31, MaxChannels: 8}},
		{"no channels", Config{Band: Band868MHz, Group: 212, NodeID: 1, MaxChannels: 0}},
		{"too many channels", Config{Band: Band868MHz, Group: 212, NodeID: 1, MaxChannels: 129}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewNode(tt.cfg, bus.Endpoint(1), nil); !errors.Is(err, ErrBadConfig) {
				t.Errorf("NewNode(%+v) = %v, want ErrBadConfig", tt.cfg, err)
			}
		})
	}

	t.Run("nil transport", func(t *testing.T) {
		if _, err := NewNode(testConfig(1), nil, nil); !errors.Is(err, ErrBadConfig) {
			t.Errorf("NewNode with nil transport = %v, want ErrBadConfig", err)
		}
	})
}

func TestNode_PollSendsOnePacketFIFO(t *testing.T) {
	bus := NewBus()
	node, err := NewNode(testConfig(1), bus.Endpoint(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	sniffer := bus.Endpoint(9)

	for i := uint8(0); i < 3; i++ {
		if err := node.BroadcastStatus(i, i*10); err != nil {
			t.Fatal(err)
		}
	}
	if node.QueueLen() != 3 {
		t.Fatalf("QueueLen() = %d, want 3", node.QueueLen())
	}

	// One transmission per poll, oldest first.
	for i := uint8(0); i < 3; i++ {
		node.Poll()
		got := drainFrames(t, sniffer)
		if len(got) != 1 {
			t.Fatalf("poll %d delivered %d frames, want 1", i, len(got))
		}
		if got[0].Channel() != i || got[0].AbsLevel() != i*10 {
			t.Errorf("poll %d delivered channel %d level %d, want %d/%d",
				i, got[0].Channel(), got[0].AbsLevel(), i, i*10)
		}
	}
	if node.Stats().Sent != 3 {
		t.Errorf("Sent = %d, want 3", node.Stats().Sent)
	}
}

func TestNode_PollDropsBadFrames(t *testing.T) {
	bus := NewBus()
	ep := bus.Endpoint(1)
	node, err := NewNode(testConfig(1), ep, nil)
	if err != nil {
		t.Fatal(err)
	}

	payload := EncodePayload(false, 3, 55)

	ep.Inject(EncodeHeader(false, 2), payload[:], false)
	if p := node.Poll(); p != nil {
		t.Error("Poll returned a packet for a frame with bad CRC")
	}
	if node.Stats().CRCErrors != 1 {
		t.Errorf("CRCErrors = %d, want 1", node.Stats().CRCErrors)
	}

	ep.Inject(EncodeHeader(false, 2), []byte{0x03}, true)
	if p := node.Poll(); p != nil {
		t.Error("Poll returned a packet for a short payload")
	}
	if node.Stats().Malformed != 1 {
		t.Errorf("Malformed = %d, want 1", node.Stats().Malformed)
	}

	// A valid frame after the junk still gets through.
	ep.Inject(EncodeHeader(false, 2), payload[:], true)
	p := node.Poll()
	if p == nil {
		t.Fatal("Poll dropped a valid frame")
	}
	if p.Channel() != 3 || p.AbsLevel() != 55 {
		t.Errorf("got channel %d level %d, want 3/55", p.Channel(), p.AbsLevel())
	}
	if node.Stats().Received != 1 {
		t.Errorf("Received = %d, want 1", node.Stats().Received)
	}
}

func TestNode_QueueOverflowCounted(t *testing.T) {
	bus := NewBus()
	node, err := NewNode(testConfig(1), bus.Endpoint(1), nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < SendQueueCap; i++ {
		if err := node.BroadcastStatus(0, uint8(i)); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := node.BroadcastStatus(0, 200); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("overflow enqueue = %v, want ErrQueueFull", err)
	}
	if node.Stats().QueueDrops != 1 {
		t.Errorf("QueueDrops = %d, want 1", node.Stats().QueueDrops)
	}
	if node.QueueLen() != SendQueueCap {
		t.Errorf("QueueLen() = %d, want %d", node.QueueLen(), SendQueueCap)
	}
}

func TestNode_RequestValidation(t *testing.T) {
	bus := NewBus()
	node, err := NewNode(testConfig(2), bus.Endpoint(2), nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := node.RequestAbsolute(0, 0, 1); !errors.Is(err, ErrBadNodeID) {
		t.Errorf("host 0: %v, want ErrBadNodeID", err)
	}
	if err := node.RequestAbsolute(31, 0, 1); !errors.Is(err, ErrBadNodeID) {
		t.Errorf("host 31: %v, want ErrBadNodeID", err)
	}
	if err := node.RequestRelative(1, 128, 1); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("channel 128: %v, want ErrUnknownChannel", err)
	}
	if err := node.BroadcastStatus(128, 1); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("broadcast channel 128: %v, want ErrUnknownChannel", err)
	}
	if node.QueueLen() != 0 {
		t.Errorf("rejected requests were queued: QueueLen() = %d", node.QueueLen())
	}
}

func TestNode_StatusRequestOnWire(t *testing.T) {
	bus := NewBus()
	node, err := NewNode(testConfig(2), bus.Endpoint(2), nil)
	if err != nil {
		t.Fatal(err)
	}
	host := bus.Endpoint(1)

	if err := node.RequestStatus(1, 12); err != nil {
		t.Fatal(err)
	}
	if err := node.RequestRelative(1, 12, 0); err != nil {
		t.Fatal(err)
	}
	node.Poll()
	node.Poll()

	got := drainFrames(t, host)
	if len(got) != 2 {
		t.Fatalf("host received %d frames, want 2", len(got))
	}
	for i, p := range got {
		if !p.StatusRequest() {
			t.Errorf("frame %d: StatusRequest() = false", i)
		}
		if p.Broadcast() || p.NodeID() != 1 || p.Channel() != 12 || !p.Relative() || p.RelLevel() != 0 {
			t.Errorf("frame %d: unexpected contents %+v", i, p)
		}
	}
}

func TestNode_SleepKeepsQueue(t *testing.T) {
	bus := NewBus()
	node, err := NewNode(testConfig(1), bus.Endpoint(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	sniffer := bus.Endpoint(9)

	if err := node.BroadcastStatus(0, 42); err != nil {
		t.Fatal(err)
	}
	if err := node.Sleep(); err != nil {
		t.Fatal(err)
	}
	node.Poll()
	if node.QueueLen() != 1 {
		t.Fatalf("QueueLen() = %d while asleep, want 1", node.QueueLen())
	}
	if got := drainFrames(t, sniffer); len(got) != 0 {
		t.Fatalf("asleep node transmitted %d frames", len(got))
	}

	if err := node.Wake(); err != nil {
		t.Fatal(err)
	}
	node.Poll()
	got := drainFrames(t, sniffer)
	if len(got) != 1 || got[0].AbsLevel() != 42 {
		t.Fatalf("after wake: got %d frames, want the queued broadcast", len(got))
	}
}
