// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

import "fmt"

// MessageKind names the protocol meaning of a packet for display. The
// wire only distinguishes directed/broadcast and relative/absolute; the
// kinds below are derived from those bits.
func MessageKind(p *RecvPacket) string {
	switch {
	case p.Broadcast() && !p.Relative():
		return "SU" // status update
	case p.Broadcast():
		return "SU?" // protocol violation: broadcast with relative level
	case p.StatusRequest():
		return "SR" // status request
	default:
		return "UR" // update request
	}
}

// FormatPacket renders a received packet as a one-line human-readable
// trace, e.g.
//
//	[SU] broadcast from node 5: channel 3 level 55
//	[UR] directed to node 5: channel 3 adjust +15
func FormatPacket(p *RecvPacket) string {
	kind := MessageKind(p)
	if p.Broadcast() {
		if p.Relative() {
			return fmt.Sprintf("[%s] broadcast from node %d: channel %d relative %+d (invalid)",
				kind, p.NodeID(), p.Channel(), p.RelLevel())
		}
		return fmt.Sprintf("[%s] broadcast from node %d: channel %d level %d",
			kind, p.NodeID(), p.Channel(), p.AbsLevel())
	}
	switch {
	case p.StatusRequest():
		return fmt.Sprintf("[%s] directed to node %d: channel %d status?",
			kind, p.NodeID(), p.Channel())
	case p.Relative():
		return fmt.Sprintf("[%s] directed to node %d: channel %d adjust %+d",
			kind, p.NodeID(), p.Channel(), p.RelLevel())
	default:
		return fmt.Sprintf("[%s] directed to node %d: channel %d set %d",
			kind, p.NodeID(), p.Channel(), p.AbsLevel())
	}
}

// FormatOutgoing renders a queued packet for trace output.
func FormatOutgoing(p OutgoingPacket) string {
	pkt, err := DecodePayload(p.Header, p.Payload[:])
	if err != nil {
		return fmt.Sprintf("[??] header 0x%02X payload % X", p.Header, p.Payload)
	}
	return FormatPacket(&pkt)
}
