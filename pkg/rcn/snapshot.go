// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Level snapshots let a restarted host resume its authoritative levels
// instead of re-seeding every channel from its configured default.
// Ranges and aux bytes are configuration, not state, so only levels are
// persisted.

const snapshotVersion = 1

type levelSnapshot struct {
	Version int     `cbor:"1,keyasint"`
	Levels  []uint8 `cbor:"2,keyasint"`
}

// SaveLevels writes a CBOR-encoded dump of the host's current levels.
func (h *Host) SaveLevels(w io.Writer) error {
	snap := levelSnapshot{
		Version: snapshotVersion,
		Levels:  make([]uint8, h.table.len()),
	}
	for i := range h.table.channels {
		snap.Levels[i] = h.table.channels[i].level
	}
	data, err := cbor.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding level snapshot: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing level snapshot: %w", err)
	}
	return nil
}

// RestoreLevels reads a snapshot and replays each saved level through
// the normal filter-and-broadcast path, so restored state is announced
// to the group exactly like any other change. Channels beyond the
// current table (or snapshots shorter than it) are left at their
// configured defaults.
//
// Announcements are best-effort: with more levels than send-queue
// slots the overflow broadcasts are counted and dropped, but every
// level is still restored. Controllers recover the missed ones via
// status requests.
func (h *Host) RestoreLevels(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading level snapshot: %w", err)
	}
	var snap levelSnapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding level snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported level snapshot version %d", snap.Version)
	}
	n := len(snap.Levels)
	if n > h.table.len() {
		n = h.table.len()
	}
	for i := 0; i < n; i++ {
		if _, err := h.Set(uint8(i), int(snap.Levels[i])); err != nil && !errors.Is(err, ErrQueueFull) {
			return err
		}
	}
	return nil
}
