// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

import (
	"fmt"
	"time"
)

// Statistics tracks per-node packet counters and error rates. Every
// condition in the protocol's error table is locally recoverable, so
// counters are the only lasting trace of dropped traffic.
type Statistics struct {
	StartTime time.Time

	Sent     uint64
	Received uint64

	CRCErrors      uint64
	Malformed      uint64
	UnknownChannel uint64
	InvalidKind    uint64
	QueueDrops     uint64

	// Rates (calculated)
	PacketRate float64 // packets/sec, sent+received
	ErrorRate  float64 // errors/sec
}

// NewStatistics creates a statistics tracker starting now.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

func (s *Statistics) errorCount() uint64 {
	return s.CRCErrors + s.Malformed + s.UnknownChannel + s.InvalidKind + s.QueueDrops
}

// CalculateRates refreshes the derived packet and error rates.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.PacketRate = float64(s.Sent+s.Received) / elapsed
		s.ErrorRate = float64(s.errorCount()) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Sent:            %8d\n", s.Sent)
	result += fmt.Sprintf("Received:        %8d\n", s.Received)

	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:      %8d\n", s.CRCErrors)
	}
	if s.Malformed > 0 {
		result += fmt.Sprintf("Malformed:       %8d\n", s.Malformed)
	}
	if s.UnknownChannel > 0 {
		result += fmt.Sprintf("Unknown Channel: %8d\n", s.UnknownChannel)
	}
	if s.InvalidKind > 0 {
		result += fmt.Sprintf("Invalid Kind:    %8d\n", s.InvalidKind)
	}
	if s.QueueDrops > 0 {
		result += fmt.Sprintf("Queue Drops:     %8d\n", s.QueueDrops)
	}

	result += fmt.Sprintf("Packet Rate:     %8.1f pkts/sec\n", s.PacketRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset clears all counters and restarts the clock.
func (s *Statistics) Reset() {
	*s = Statistics{StartTime: time.Now()}
}
