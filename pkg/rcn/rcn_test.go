// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// ============================================================
// Host and controller over a shared bus
// ============================================================

// pump runs both ends of a host/controller pair until the traffic
// settles. Each step moves at most one packet per node, so a couple of
// rounds per in-flight packet is plenty.
func pump(h *Host, c *Controller) {
	for i := 0; i < 64; i++ {
		h.Run()
		c.Run()
	}
}

func testPair(t *testing.T, channels ...[3]uint8) (*Host, *Controller, *notifyRecorder) {
	t.Helper()
	bus := NewBus()

	h, err := NewHost(testConfig(1), bus.Endpoint(1), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := &notifyRecorder{}
	c, err := NewController(testConfig(2), 1, bus.Endpoint(2), rec, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i, ch := range channels {
		if _, err := h.AddChannel(ch[0], ch[1], ch[2]); err != nil {
			t.Fatalf("host AddChannel %d: %v", i, err)
		}
		// The controller does not know the host's level yet; it seeds
		// zero and relies on synchronization.
		if _, err := c.AddChannel(ch[0], 0, ch[2]); err != nil {
			t.Fatalf("controller AddChannel %d: %v", i, err)
		}
	}
	pump(h, c)
	rec.reset()
	return h, c, rec
}

func TestPair_ControllerConvergesAtStartup(t *testing.T) {
	h, c, _ := testPair(t, [3]uint8{100, 40, 0}, [3]uint8{255, 200, 0}, [3]uint8{1, 1, 0})

	for i := uint8(0); i < 3; i++ {
		want, _ := h.Get(i)
		got, _ := c.Get(i)
		if got != want {
			t.Errorf("channel %d: cache = %d, host = %d", i, got, want)
		}
	}
}

func TestPair_AdjustRoundTrip(t *testing.T) {
	h, c, rec := testPair(t, [3]uint8{100, 40, 0})

	level, err := c.Adjust(0, 15)
	if err != nil {
		t.Fatal(err)
	}
	if level != 55 {
		t.Fatalf("optimistic level = %d, want 55", level)
	}
	pump(h, c)

	if hostLevel, _ := h.Get(0); hostLevel != 55 {
		t.Errorf("host level = %d, want 55", hostLevel)
	}
	if cached, _ := c.Get(0); cached != 55 {
		t.Errorf("cache = %d, want 55", cached)
	}
	// Optimistic write plus host confirmation.
	want := []notifyCall{{0, 40, 55}, {0, 55, 55}}
	if len(rec.calls) != 2 || rec.calls[0] != want[0] || rec.calls[1] != want[1] {
		t.Errorf("notifier calls = %v, want %v", rec.calls, want)
	}
}

func TestPair_HostClampCorrectsOptimisticCache(t *testing.T) {
	// The controller believes the range is wider than the host's, so
	// its optimistic value overshoots and the host's broadcast pulls
	// the cache back down.
	bus := NewBus()
	h, err := NewHost(testConfig(1), bus.Endpoint(1), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewController(testConfig(2), 1, bus.Endpoint(2), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.AddChannel(100, 40, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddChannel(255, 0, 0); err != nil {
		t.Fatal(err)
	}
	pump(h, c)

	if _, err := c.Set(0, 200); err != nil {
		t.Fatal(err)
	}
	if cached, _ := c.Get(0); cached != 200 {
		t.Fatalf("optimistic cache = %d, want 200", cached)
	}
	pump(h, c)

	if hostLevel, _ := h.Get(0); hostLevel != 100 {
		t.Errorf("host level = %d, want clamped 100", hostLevel)
	}
	if cached, _ := c.Get(0); cached != 100 {
		t.Errorf("cache = %d after broadcast, want 100", cached)
	}
}

func TestPair_SyncRefreshesStaleCache(t *testing.T) {
	h, c, _ := testPair(t, [3]uint8{100, 40, 0})

	// The host changes locally (wall switch); the controller hears the
	// broadcast only if it is listening, so drop it by sleeping.
	if err := c.Sleep(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Set(0, 80); err != nil {
		t.Fatal(err)
	}
	h.Run()
	if err := c.Wake(false); err != nil {
		t.Fatal(err)
	}
	if cached, _ := c.Get(0); cached != 40 {
		t.Fatalf("cache = %d while stale, want 40", cached)
	}

	if err := c.Sync(0); err != nil {
		t.Fatal(err)
	}
	pump(h, c)

	if cached, _ := c.Get(0); cached != 80 {
		t.Errorf("cache = %d after sync, want 80", cached)
	}
}

// ============================================================
// Fuzz
// ============================================================

func TestFuzz_PayloadRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		relative := rng.Intn(2) == 1
		channel := uint8(rng.Intn(MaxChannels))
		value := byte(rng.Intn(256))
		directed := rng.Intn(2) == 1
		node := uint8(1 + rng.Intn(NodeMax))

		header := EncodeHeader(directed, node)
		payload := EncodePayload(relative, channel, value)
		p, err := DecodePayload(header, payload[:])
		if err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		if p.Relative() != relative || p.Channel() != channel || p.AbsLevel() != value {
			t.Fatalf("round %d: payload mismatch", i)
		}
		if p.Broadcast() == directed || p.NodeID() != node {
			t.Fatalf("round %d: header mismatch", i)
		}
	}
}

func TestFuzz_HostInvariants(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	channels := [][3]uint8{
		{100, 40, 0},
		{255, 0, 0},
		{1, 1, 0},
		{0, 0, 0},
	}
	h, sniffer := testHost(t, nil, channels...)

	for i := 0; i < rounds; i++ {
		channel := uint8(rng.Intn(len(channels) + 2)) // sometimes unknown
		relative := rng.Intn(2) == 1
		value := byte(rng.Intn(256))
		known := int(channel) < len(channels)

		request(t, h, channel, relative, value)
		got := drainFrames(t, sniffer)

		if known && len(got) != 1 {
			t.Fatalf("round %d: %d broadcasts for a known channel, want 1", i, len(got))
		}
		if !known && len(got) != 0 {
			t.Fatalf("round %d: %d broadcasts for an unknown channel, want 0", i, len(got))
		}
		for j := range channels {
			level, err := h.Get(uint8(j))
			if err != nil {
				t.Fatal(err)
			}
			if level > channels[j][0] {
				t.Fatalf("round %d: channel %d level %d above range %d", i, j, level, channels[j][0])
			}
		}
	}
}

func TestFuzz_PairStaysConsistent(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds() / 10

	h, c, _ := testPair(t, [3]uint8{100, 40, 0}, [3]uint8{255, 10, 0})

	for i := 0; i < rounds; i++ {
		channel := uint8(rng.Intn(2))
		switch rng.Intn(3) {
		case 0:
			c.Set(channel, rng.Intn(300)-20)
		case 1:
			c.Adjust(channel, rng.Intn(61)-30)
		case 2:
			c.Sync(channel)
		}
		pump(h, c)

		// With no packet loss the cache must equal the host after every
		// settled exchange.
		for ch := uint8(0); ch < 2; ch++ {
			want, _ := h.Get(ch)
			got, _ := c.Get(ch)
			if got != want {
				t.Fatalf("round %d: channel %d cache %d != host %d", i, ch, got, want)
			}
		}
	}
}
