// Package shuffle permutes a batch of committed values and rerandomizes
// their commitments. The output commitments are recomputed from scratch
// out of the permuted messages and fresh openings, so running a shuffle
// requires knowledge of the original openings — full-knowledge
// rerandomization, not black-box homomorphic blinding.
package shuffle

import (
	"math/big"

	"golang.org/x/xerrors"

	"verimix/pedersen"
	"verimix/prng"
)

// Permutation is a validated bijection on {0..n-1}: output position j is
// filled from input position perm[j].
type Permutation []int

// New validates indices as a bijection and wraps them. Callers are never
// trusted to hand over a true permutation.
func New(indices []int) (Permutation, error) {
	seen := make([]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(indices) {
			return nil, xerrors.Errorf("permutation: index %d out of range [0, %d)", idx, len(indices))
		}
		if seen[idx] {
			return nil, xerrors.Errorf("permutation: index %d appears twice", idx)
		}
		seen[idx] = true
	}
	perm := make(Permutation, len(indices))
	copy(perm, indices)
	return perm, nil
}

// Identity returns the identity permutation of size n.
func Identity(n int) Permutation {
	perm := make(Permutation, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// Random draws a uniform permutation of size n from src.
func Random(src prng.Source, n int) (Permutation, error) {
	indices, err := prng.Perm(src, n)
	if err != nil {
		return nil, xerrors.Errorf("permutation: %v", err)
	}
	return Permutation(indices), nil
}

// Inverse returns the inverse bijection: for original index i,
// Inverse()[i] is the output position i moved to.
func (p Permutation) Inverse() Permutation {
	inv := make(Permutation, len(p))
	for j, i := range p {
		inv[i] = j
	}
	return inv
}

// Apply permutes values: out[j] = values[perm[j]].
func Apply[T any](values []T, perm Permutation) ([]T, error) {
	if len(values) != len(perm) {
		return nil, xerrors.Errorf("apply: %d values against permutation of size %d", len(values), len(perm))
	}
	out := make([]T, len(values))
	for j := range perm {
		out[j] = values[perm[j]]
	}
	return out, nil
}

// Result is the output side of one shuffle: rerandomized commitments, the
// permuted messages and the openings that verify them, all indexed by
// output position.
type Result struct {
	Outputs  []*big.Int
	Messages []*big.Int
	Openings []*big.Int
}

// Shuffle permutes (messages, openings) in lockstep and recomputes each
// output commitment under a rerandomized opening:
//
//	newOpening[j] = (openings[perm[j]] + rerands[perm[j]]) mod (p-1)
//
// The rerandomizer is looked up by the ORIGINAL index perm[j], not the
// output position: rerandomizers are supplied one per original element and
// stay keyed to pre-permutation identity.
func Shuffle(scheme *pedersen.Scheme, messages, openings []*big.Int, perm Permutation, rerands []*big.Int) (*Result, error) {
	n := len(messages)
	if len(openings) != n || len(perm) != n || len(rerands) != n {
		return nil, xerrors.Errorf(
			"shuffle: mismatched lengths: %d messages, %d openings, %d permutation, %d rerandomizers",
			n, len(openings), len(perm), len(rerands))
	}

	permMessages, err := Apply(messages, perm)
	if err != nil {
		return nil, err
	}
	permOpenings, err := Apply(openings, perm)
	if err != nil {
		return nil, err
	}

	order := scheme.Group().ExpOrder()
	newOpenings := make([]*big.Int, n)
	for j := 0; j < n; j++ {
		r := new(big.Int).Add(permOpenings[j], rerands[perm[j]])
		newOpenings[j] = r.Mod(r, order)
	}

	return &Result{
		Outputs:  scheme.CommitAllWith(permMessages, newOpenings),
		Messages: permMessages,
		Openings: newOpenings,
	}, nil
}
