package archive

import (
	"fmt"
	"sync"

	"github.com/arloliu/iopkg/errs"
)

// PayloadKind identifies an auxiliary stream stored outside the package header.
type PayloadKind uint8

const (
	PayloadBulk     PayloadKind = 0x1 // PayloadBulk is the large binary blob stream.
	PayloadOptional PayloadKind = 0x2 // PayloadOptional is the optional streaming blob.
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadBulk:
		return "Bulk"
	case PayloadOptional:
		return "Optional"
	default:
		return "Unknown"
	}
}

// PayloadSource opens the bytes of an auxiliary stream.
type PayloadSource func() ([]byte, error)

type payload struct {
	start  int64
	source PayloadSource

	once   sync.Once
	reader *Reader
	err    error
}

type payloadSet struct {
	mu    sync.RWMutex
	items map[PayloadKind]*payload
}

func newPayloadSet() *payloadSet {
	return &payloadSet{items: make(map[PayloadKind]*payload)}
}

// AddPayload attaches an auxiliary stream whose offsets are relative to start.
//
// The source is not called until the payload is first requested. Attaching the same
// kind twice replaces the earlier attachment.
func (r *Reader) AddPayload(kind PayloadKind, start int64, source PayloadSource) {
	r.payloads.mu.Lock()
	defer r.payloads.mu.Unlock()

	r.payloads.items[kind] = &payload{start: start, source: source}
}

// HasPayload reports whether a stream of the given kind is attached.
func (r *Reader) HasPayload(kind PayloadKind) bool {
	r.payloads.mu.RLock()
	defer r.payloads.mu.RUnlock()

	_, ok := r.payloads.items[kind]

	return ok
}

// PayloadStart returns the start offset the payload was attached at.
func (r *Reader) PayloadStart(kind PayloadKind) (int64, bool) {
	r.payloads.mu.RLock()
	defer r.payloads.mu.RUnlock()

	p, ok := r.payloads.items[kind]
	if !ok {
		return 0, false
	}

	return p.start, true
}

// Payload opens the attached stream and returns a fresh cursor over it.
//
// The source runs at most once; its result, including an error, is shared by all
// clones of the reader.
func (r *Reader) Payload(kind PayloadKind) (*Reader, error) {
	r.payloads.mu.RLock()
	p, ok := r.payloads.items[kind]
	r.payloads.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s payload of %q", errs.ErrPayloadNotAttached, kind, r.Name)
	}

	p.once.Do(func() {
		data, err := p.source()
		if err != nil {
			p.err = fmt.Errorf("open %s payload of %q: %w", kind, r.Name, err)
			return
		}
		pr := NewReader(fmt.Sprintf("%s.%s", r.Name, kind), data, r.Versions)
		pr.AbsoluteOffset = p.start
		p.reader = pr
	})
	if p.err != nil {
		return nil, p.err
	}

	return p.reader.Clone(), nil
}
