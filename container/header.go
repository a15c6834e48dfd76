// Package container decodes the container-level package index and the legacy
// imported-package graph.
package container

import (
	"fmt"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/errs"
)

const (
	// StoreEntrySize is the size of one store entry record.
	StoreEntrySize = 24
	// ShaderMapHashSize is the size of one shader map hash referenced by a store entry.
	ShaderMapHashSize = 20
)

// StoreEntry is the per-package record of a container header.
type StoreEntry struct {
	ExportCount       int32
	ExportBundleCount int32
	ImportedPackages  []PackageID
	ShaderMapHashes   int
}

// Header is the package index of one container.
//
// Layout:
//
//	u64 container id
//	i32 n, n x u64 package id
//	i32 store bytes, n x 24-byte store entries followed by their arrays
//
// A store entry holds i32 export count, i32 bundle count, then two array views
// (u32 count, u32 offset) for imported package ids and shader map hashes. Each offset
// is relative to the position of the offset field itself.
type Header struct {
	ContainerID  uint64
	PackageIDs   []PackageID
	StoreEntries []StoreEntry

	byID map[PackageID]int
}

// NewHeader builds a header from parallel id and entry slices.
func NewHeader(containerID uint64, ids []PackageID, entries []StoreEntry) (*Header, error) {
	if len(ids) != len(entries) {
		return nil, fmt.Errorf("%w: %d package ids, %d store entries", errs.ErrInvalidContainer, len(ids), len(entries))
	}

	h := &Header{
		ContainerID:  containerID,
		PackageIDs:   ids,
		StoreEntries: entries,
		byID:         make(map[PackageID]int, len(ids)),
	}
	for i, id := range ids {
		h.byID[id] = i
	}

	return h, nil
}

// Lookup returns the store entry of a package. It is safe on a nil header.
func (h *Header) Lookup(id PackageID) (StoreEntry, bool) {
	if h == nil {
		return StoreEntry{}, false
	}
	i, ok := h.byID[id]
	if !ok {
		return StoreEntry{}, false
	}

	return h.StoreEntries[i], true
}

// ParseHeader decodes a container header.
func ParseHeader(data []byte) (*Header, error) {
	r := archive.NewReader("container header", data, nil)

	containerID, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("%w: container id: %w", errs.ErrInvalidContainer, err)
	}

	n, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w: package count: %w", errs.ErrInvalidContainer, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d packages", errs.ErrInvalidContainer, n)
	}
	raw, err := r.ReadUint64Array(int(n))
	if err != nil {
		return nil, fmt.Errorf("%w: package ids: %w", errs.ErrInvalidContainer, err)
	}
	ids := make([]PackageID, n)
	for i, v := range raw {
		ids[i] = PackageID(v)
	}

	storeSize, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w: store size: %w", errs.ErrInvalidContainer, err)
	}
	if storeSize < 0 || int64(storeSize) < int64(n)*StoreEntrySize {
		return nil, fmt.Errorf("%w: store of %d bytes for %d entries", errs.ErrInvalidContainer, storeSize, n)
	}
	store, err := r.ReadBytes(int(storeSize))
	if err != nil {
		return nil, fmt.Errorf("%w: store entries: %w", errs.ErrInvalidContainer, err)
	}

	entries := make([]StoreEntry, n)
	for i := range entries {
		if entries[i], err = parseStoreEntry(store, i*StoreEntrySize); err != nil {
			return nil, fmt.Errorf("%w: store entry %d: %w", errs.ErrInvalidContainer, i, err)
		}
	}

	return NewHeader(containerID, ids, entries)
}

func parseStoreEntry(store []byte, at int) (StoreEntry, error) {
	rec := store[at : at+StoreEntrySize]

	e := StoreEntry{
		ExportCount:       int32(le.Uint32(rec[0:4])), //nolint: gosec
		ExportBundleCount: int32(le.Uint32(rec[4:8])), //nolint: gosec
		ShaderMapHashes:   int(le.Uint32(rec[16:20])),
	}

	count := int(le.Uint32(rec[8:12]))
	start := at + 12 + int(le.Uint32(rec[12:16]))
	if count > 0 {
		end := start + count*8
		if start < 0 || end > len(store) {
			return StoreEntry{}, fmt.Errorf("%w: imported packages [%d, %d) of %d", errs.ErrInvalidOffset, start, end, len(store))
		}
		e.ImportedPackages = make([]PackageID, count)
		for i := range e.ImportedPackages {
			e.ImportedPackages[i] = PackageID(le.Uint64(store[start+8*i:]))
		}
	}

	return e, nil
}

// Bytes serializes the header. Shader map hashes are written zeroed.
func (h *Header) Bytes() []byte {
	n := len(h.StoreEntries)

	// Arrays go after the fixed entries, imported ids first.
	store := make([]byte, n*StoreEntrySize)
	for i, e := range h.StoreEntries {
		at := i * StoreEntrySize
		le.PutUint32(store[at:], uint32(e.ExportCount))
		le.PutUint32(store[at+4:], uint32(e.ExportBundleCount))

		le.PutUint32(store[at+8:], uint32(len(e.ImportedPackages)))
		le.PutUint32(store[at+12:], uint32(len(store)-(at+12)))
		for _, id := range e.ImportedPackages {
			store = le.AppendUint64(store, uint64(id))
		}

		le.PutUint32(store[at+16:], uint32(e.ShaderMapHashes))
		le.PutUint32(store[at+20:], uint32(len(store)-(at+20)))
		store = append(store, make([]byte, e.ShaderMapHashes*ShaderMapHashSize)...)
	}

	out := le.AppendUint64(nil, h.ContainerID)
	out = le.AppendUint32(out, uint32(len(h.PackageIDs))) //nolint: gosec
	for _, id := range h.PackageIDs {
		out = le.AppendUint64(out, uint64(id))
	}
	out = le.AppendUint32(out, uint32(len(store))) //nolint: gosec

	return append(out, store...)
}
