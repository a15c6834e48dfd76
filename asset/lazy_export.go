package asset

import (
	"context"
	"fmt"
	"sync"

	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/uobject"
)

// ExportState is the materialization state of an export slot.
type ExportState uint8

const (
	// StateUnregistered slots have no serialize command in any bundle and cannot be forced.
	StateUnregistered ExportState = iota
	// StateRegistered slots know their data range but have not been forced.
	StateRegistered
	// StateInProgress slots are being materialized.
	StateInProgress
	// StateMaterialized slots hold their final object or error.
	StateMaterialized
)

func (s ExportState) String() string {
	switch s {
	case StateUnregistered:
		return "Unregistered"
	case StateRegistered:
		return "Registered"
	case StateInProgress:
		return "InProgress"
	case StateMaterialized:
		return "Materialized"
	default:
		return "Unknown"
	}
}

// LazyExport is the memoized slot of one export.
//
// The first Object call materializes the export; every later or concurrent call
// returns the same object, or the same error. Materialization runs at most once.
type LazyExport struct {
	pkg   *Package
	index int
	// dataOffset is the position of the export's data in the package stream, assigned
	// in bundle order at registration.
	dataOffset int64

	mu    sync.Mutex
	state ExportState
	owner *loadChain
	done  chan struct{}
	obj   uobject.Object
	err   error
}

// Index returns the export map index of the slot.
func (e *LazyExport) Index() int {
	return e.index
}

// DataOffset returns the position of the export's serialized data in the package stream.
func (e *LazyExport) DataOffset() int64 {
	return e.dataOffset
}

// State returns the current state.
func (e *LazyExport) State() ExportState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Object materializes the export if needed and returns it.
//
// Object starts a new resolution chain. A deserializer that forces other exports must
// use ObjectContext with its reader's context instead, so that forcing an export that
// is already being materialized by the same chain fails with errs.ErrCyclicReference
// rather than waiting for itself.
func (e *LazyExport) Object() (uobject.Object, error) {
	return e.ObjectContext(context.Background())
}

// ObjectContext is like Object but joins the resolution chain carried by ctx, if any.
func (e *LazyExport) ObjectContext(ctx context.Context) (uobject.Object, error) {
	chain := chainFrom(ctx)
	if chain == nil {
		chain = &loadChain{root: e}
	}

	return e.force(chain)
}

func (e *LazyExport) force(chain *loadChain) (uobject.Object, error) {
	e.mu.Lock()
	switch e.state {
	case StateUnregistered:
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: export %d of %q", errs.ErrExportNotSerialized, e.index, e.pkg.Name)

	case StateMaterialized:
		obj, err := e.obj, e.err
		e.mu.Unlock()

		return obj, err

	case StateInProgress:
		owner, done := e.owner, e.done
		e.mu.Unlock()
		if owner == chain {
			return nil, fmt.Errorf("%w: export %d of %q", errs.ErrCyclicReference, e.index, e.pkg.Name)
		}
		if err := waits.wait(chain, owner, done); err != nil {
			return nil, fmt.Errorf("%w: export %d of %q", err, e.index, e.pkg.Name)
		}

		e.mu.Lock()
		defer e.mu.Unlock()

		return e.obj, e.err
	}

	e.state = StateInProgress
	e.owner = chain
	e.done = make(chan struct{})
	e.mu.Unlock()

	obj, err := e.pkg.materialize(e, chain)

	e.mu.Lock()
	e.obj, e.err = obj, err
	e.state = StateMaterialized
	e.owner = nil
	close(e.done)
	e.mu.Unlock()

	return obj, err
}

// loadChain identifies one resolution chain: a top-level force and every nested force
// it performs on the same goroutine.
type loadChain struct {
	root *LazyExport
}

type chainKey struct{}

func withChain(ctx context.Context, chain *loadChain) context.Context {
	return context.WithValue(ctx, chainKey{}, chain)
}

func chainFrom(ctx context.Context) *loadChain {
	chain, _ := ctx.Value(chainKey{}).(*loadChain)
	return chain
}

// waitGraph tracks which chain waits on which, so two chains forcing each other's
// in-progress exports fail instead of blocking forever.
type waitGraph struct {
	mu    sync.Mutex
	edges map[*loadChain]*loadChain
}

var waits = &waitGraph{edges: make(map[*loadChain]*loadChain)}

func (g *waitGraph) wait(chain, owner *loadChain, done <-chan struct{}) error {
	g.mu.Lock()
	for c := owner; c != nil; c = g.edges[c] {
		if c != chain {
			continue
		}
		g.mu.Unlock()
		// The owner may have finished after we observed it in progress.
		select {
		case <-done:
			return nil
		default:
			return errs.ErrCyclicReference
		}
	}
	g.edges[chain] = owner
	g.mu.Unlock()

	<-done

	g.mu.Lock()
	delete(g.edges, chain)
	g.mu.Unlock()

	return nil
}
