// Package pedersen implements Pedersen commitments over an abstract cyclic
// group: C = g^w * h^r. Binding and hiding rest entirely on the discrete-log
// hardness of the supplied group; the scheme itself never validates the
// domain parameters (that is the config loader's job).
package pedersen

import (
	"math/big"
	"runtime"
	"sync"

	"golang.org/x/xerrors"

	"verimix/group"
	"verimix/prng"
)

// parallelThreshold is the batch size above which per-index commitment
// work fans out across goroutines. Per-index computations are independent,
// so no synchronization is needed beyond collecting results in order.
const parallelThreshold = 32

// Scheme binds messages to group elements under the fixed domain
// parameters. Stateless after construction; safe for concurrent use.
type Scheme struct {
	grp group.Group
	g   *big.Int
	h   *big.Int
}

// NewScheme creates a commitment scheme over the finite-field backend for
// the given parameters.
func NewScheme(params group.Params) *Scheme {
	return &Scheme{
		grp: group.NewModGroup(params.P),
		g:   new(big.Int).Set(params.G),
		h:   new(big.Int).Set(params.H),
	}
}

// Group exposes the underlying group, for layers (shuffle, audit) that
// need raw element and exponent arithmetic.
func (s *Scheme) Group() group.Group {
	return s.grp
}

// H returns the second generator, used by the audit layer to fold opening
// differences back into a commitment product.
func (s *Scheme) H() *big.Int {
	return new(big.Int).Set(s.h)
}

// Commit commits to message with a fresh opening drawn uniformly from
// [1, order]. Returns the commitment and the opening used.
func (s *Scheme) Commit(src prng.Source, message *big.Int) (*big.Int, *big.Int, error) {
	opening, err := prng.IntInclusive(src, big.NewInt(1), s.grp.ExpOrder())
	if err != nil {
		return nil, nil, xerrors.Errorf("pedersen: drawing opening: %v", err)
	}
	return s.CommitWith(message, opening), opening, nil
}

// CommitWith computes g^message * h^opening deterministically. Pure.
func (s *Scheme) CommitWith(message, opening *big.Int) *big.Int {
	return s.grp.Mul(s.grp.Exp(s.g, message), s.grp.Exp(s.h, opening))
}

// Verify recomputes the expected commitment and compares. A mismatch is a
// plain false, never an error.
func (s *Scheme) Verify(commitment, message, opening *big.Int) bool {
	return s.grp.Equal(commitment, s.CommitWith(message, opening))
}

// CommitBatch commits every message with an independently drawn opening.
// Openings are drawn sequentially from src (sources need not be safe for
// concurrent use); the group exponentiations run data-parallel for large
// batches.
func (s *Scheme) CommitBatch(src prng.Source, messages []*big.Int) ([]*big.Int, []*big.Int, error) {
	n := len(messages)
	openings := make([]*big.Int, n)
	for i := range messages {
		opening, err := prng.IntInclusive(src, big.NewInt(1), s.grp.ExpOrder())
		if err != nil {
			return nil, nil, xerrors.Errorf("pedersen: drawing opening %d: %v", i, err)
		}
		openings[i] = opening
	}

	commitments := make([]*big.Int, n)
	forEachIndex(n, func(i int) {
		commitments[i] = s.CommitWith(messages[i], openings[i])
	})
	return commitments, openings, nil
}

// CommitAllWith computes the deterministic commitment for every
// (message, opening) pair, data-parallel for large batches. Lengths must
// already agree; callers validate.
func (s *Scheme) CommitAllWith(messages, openings []*big.Int) []*big.Int {
	commitments := make([]*big.Int, len(messages))
	forEachIndex(len(messages), func(i int) {
		commitments[i] = s.CommitWith(messages[i], openings[i])
	})
	return commitments
}

// forEachIndex runs fn for every index in [0, n), fanning out across
// goroutines once the batch is large enough to pay for it.
func forEachIndex(n int, fn func(i int)) {
	if n < parallelThreshold {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}
