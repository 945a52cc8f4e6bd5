// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package serialmodem

import (
	"bytes"
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

// decodeStream runs a byte slice through a fresh decoder and collects
// every completed frame, ignoring framing errors.
func decodeStream(data []byte) []*Frame {
	dec := NewDecoder()
	var frames []*Frame
	for _, b := range data {
		if f, _ := dec.DecodeByte(b); f != nil {
			frames = append(frames, f)
		}
	}
	return frames
}

func TestCalculateCRC_KnownValue(t *testing.T) {
	// Standard CRC-16-CCITT (false) check value.
	if got := CalculateCRC([]byte("123456789")); got != 0x29B1 {
		t.Errorf("CalculateCRC(\"123456789\") = 0x%04X, want 0x29B1", got)
	}
	if got := CalculateCRC(nil); got != crcInitial {
		t.Errorf("CalculateCRC(nil) = 0x%04X, want initial 0x%04X", got, crcInitial)
	}
}

func TestEncodeFrame_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		header  byte
		payload []byte
	}{
		{"plain", 0x41, []byte{0x03, 0x37}},
		{"payload contains START", 0x01, []byte{StartByte, 0x00}},
		{"payload contains END", 0x01, []byte{EndByte, 0x10}},
		{"payload contains ESC", 0x01, []byte{EscByte, EscByte}},
		{"header needs stuffing", StartByte, []byte{0x00, 0x00}},
		{"all framing bytes", EscByte, []byte{StartByte, EndByte}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream, err := EncodeFrame(tt.header, tt.payload)
			if err != nil {
				t.Fatal(err)
			}
			if stream[0] != StartByte || stream[len(stream)-1] != EndByte {
				t.Fatalf("frame not delimited: % X", stream)
			}
			// No unescaped framing bytes inside.
			inner := stream[1 : len(stream)-1]
			for i := 0; i < len(inner); i++ {
				if inner[i] == StartByte || inner[i] == EndByte {
					t.Fatalf("unescaped framing byte at %d: % X", i, inner)
				}
				if inner[i] == EscByte {
					i++ // escaped pair
				}
			}

			frames := decodeStream(stream)
			if len(frames) != 1 {
				t.Fatalf("decoded %d frames, want 1", len(frames))
			}
			f := frames[0]
			if !f.CRCValid {
				t.Error("CRCValid = false for a clean round trip")
			}
			if f.Header != tt.header || !bytes.Equal(f.Payload[:], tt.payload) {
				t.Errorf("decoded %02X % X, want %02X % X", f.Header, f.Payload, tt.header, tt.payload)
			}
		})
	}
}

func TestEncodeFrame_BadPayloadLength(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		if _, err := EncodeFrame(0x01, make([]byte, n)); err == nil {
			t.Errorf("EncodeFrame with %d payload bytes should fail", n)
		}
	}
}

func TestDecoder_CorruptedCRC(t *testing.T) {
	stream, err := EncodeFrame(0x41, []byte{0x03, 0x37})
	if err != nil {
		t.Fatal(err)
	}
	// Flip a payload bit. The chosen frame contains no stuffed bytes,
	// so byte 2 is the first payload byte.
	stream[2] ^= 0x01

	frames := decodeStream(stream)
	if len(frames) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(frames))
	}
	if frames[0].CRCValid {
		t.Error("CRCValid = true for a corrupted frame")
	}
}

func TestDecoder_SkipsGarbageBetweenFrames(t *testing.T) {
	frame, err := EncodeFrame(0x41, []byte{0x03, 0x37})
	if err != nil {
		t.Fatal(err)
	}

	var stream []byte
	stream = append(stream, 0x00, 0xAA, 0x55) // line noise
	stream = append(stream, frame...)
	stream = append(stream, 0x13, 0x37) // more noise
	stream = append(stream, frame...)

	frames := decodeStream(stream)
	if len(frames) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(frames))
	}
	for i, f := range frames {
		if !f.CRCValid || f.Header != 0x41 {
			t.Errorf("frame %d: %+v", i, f)
		}
	}
}

func TestDecoder_RestartMidFrame(t *testing.T) {
	good, err := EncodeFrame(0x41, []byte{0x03, 0x37})
	if err != nil {
		t.Fatal(err)
	}

	// A START in the middle of a frame abandons it and begins anew.
	var stream []byte
	stream = append(stream, good[:3]...) // truncated frame
	stream = append(stream, good...)

	frames := decodeStream(stream)
	if len(frames) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(frames))
	}
	if !frames[0].CRCValid {
		t.Error("recovered frame failed CRC")
	}
}

func TestDecoder_TruncatedFrameReportsError(t *testing.T) {
	good, err := EncodeFrame(0x41, []byte{0x03, 0x37})
	if err != nil {
		t.Fatal(err)
	}

	dec := NewDecoder()
	// Feed START plus one data byte, then a premature END.
	for _, b := range good[:2] {
		if _, err := dec.DecodeByte(b); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := dec.DecodeByte(EndByte); err == nil {
		t.Error("premature END did not report a framing error")
	}

	// Decoder must be usable again immediately.
	frames := decodeStream(good)
	if len(frames) != 1 || !frames[0].CRCValid {
		t.Error("decoder did not recover after framing error")
	}
}

func TestDecoder_IdleEndByteIgnored(t *testing.T) {
	dec := NewDecoder()
	if f, err := dec.DecodeByte(EndByte); f != nil || err != nil {
		t.Errorf("END in idle: frame=%v err=%v, want nil/nil", f, err)
	}
}

func TestFuzz_FrameRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	dec := NewDecoder()
	for i := 0; i < rounds; i++ {
		header := byte(rng.Intn(256))
		payload := []byte{byte(rng.Intn(256)), byte(rng.Intn(256))}

		stream, err := EncodeFrame(header, payload)
		if err != nil {
			t.Fatalf("round %d: %v", i, err)
		}

		var got *Frame
		for _, b := range stream {
			f, err := dec.DecodeByte(b)
			if err != nil {
				t.Fatalf("round %d: decode error: %v", i, err)
			}
			if f != nil {
				got = f
			}
		}
		if got == nil {
			t.Fatalf("round %d: no frame decoded", i)
		}
		if !got.CRCValid || got.Header != header || !bytes.Equal(got.Payload[:], payload) {
			t.Fatalf("round %d: round trip mismatch: %+v", i, got)
		}
	}
}

func TestFuzz_DecoderSurvivesRandomBytes(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	dec := NewDecoder()
	for i := 0; i < rounds; i++ {
		// Random noise must never wedge the state machine.
		for j := 0; j < 32; j++ {
			dec.DecodeByte(byte(rng.Intn(256)))
		}

		stream, err := EncodeFrame(byte(rng.Intn(256)), []byte{byte(rng.Intn(256)), byte(rng.Intn(256))})
		if err != nil {
			t.Fatal(err)
		}
		// Noise ending in a dangling escape may swallow the first START,
		// so two consecutive clean frames must always get at least one
		// through.
		recovered := false
		for _, b := range append(append([]byte(nil), stream...), stream...) {
			if f, _ := dec.DecodeByte(b); f != nil && f.CRCValid {
				recovered = true
			}
		}
		if !recovered {
			t.Fatalf("round %d: decoder failed to resynchronize on clean frames", i)
		}
	}
}
