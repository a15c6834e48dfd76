// Package hash provides the in-memory hashes used to index names.
//
// These hashes key lookup maps only. Hashes stored in cooked packages use a different
// algorithm, see names.Hash.
package hash

import (
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// FoldID computes the xxHash64 of data with ASCII letters lowered, so names that differ
// only in ASCII case share an id. Other runes are hashed as is.
func FoldID(data string) uint64 {
	var (
		d   xxhash.Digest
		buf [64]byte
		n   int
	)
	d.Reset()

	for i := 0; i < len(data); i++ {
		c := data[i]
		if c >= utf8.RuneSelf {
			// Multi-byte sequences never contain ASCII bytes.
			buf[n] = c
		} else if 'A' <= c && c <= 'Z' {
			buf[n] = c + ('a' - 'A')
		} else {
			buf[n] = c
		}
		n++
		if n == len(buf) {
			_, _ = d.Write(buf[:n])
			n = 0
		}
	}
	_, _ = d.Write(buf[:n])

	return d.Sum64()
}
