package container

import (
	"fmt"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/errs"
)

// GraphArcSize is the size of one skipped bundle arc in legacy graph data.
const GraphArcSize = 8

// ReadGraphData reads the legacy imported-package graph at the cursor and returns the
// imported package ids in order. Per-package arcs are skipped.
//
//	i32 n, then n x (u64 package id, i32 arc count, arc count x 8-byte arc)
func ReadGraphData(r *archive.Reader) ([]PackageID, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("graph package count: %w", err)
	}
	if n < 0 || int64(n)*12 > r.Remaining() {
		return nil, fmt.Errorf("%w: %d imported packages in %d bytes", errs.ErrInvalidCount, n, r.Remaining())
	}

	ids := make([]PackageID, n)
	for i := range ids {
		id, err := r.ReadUint64()
		if err != nil {
			return nil, fmt.Errorf("graph package %d: %w", i, err)
		}
		arcs, err := r.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("graph package %d: %w", i, err)
		}
		if arcs < 0 {
			return nil, fmt.Errorf("%w: graph package %d has %d arcs", errs.ErrInvalidCount, i, arcs)
		}
		if err := r.Skip(int64(arcs) * GraphArcSize); err != nil {
			return nil, fmt.Errorf("graph package %d arcs: %w", i, err)
		}
		ids[i] = PackageID(id)
	}

	return ids, nil
}

// AppendGraphData appends legacy graph data for ids to buf. arcs[i], when present, is
// the number of zeroed arcs written for ids[i].
func AppendGraphData(buf []byte, ids []PackageID, arcs []int) []byte {
	buf = le.AppendUint32(buf, uint32(len(ids))) //nolint: gosec
	for i, id := range ids {
		buf = le.AppendUint64(buf, uint64(id))
		n := 0
		if i < len(arcs) {
			n = arcs[i]
		}
		buf = le.AppendUint32(buf, uint32(n)) //nolint: gosec
		buf = append(buf, make([]byte, n*GraphArcSize)...)
	}

	return buf
}
