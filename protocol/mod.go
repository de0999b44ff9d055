// Package protocol pairs a Prover and a Verifier around one shuffle run.
// A run walks Setup (parameters fixed) -> Commit (inputs produced) ->
// Shuffle (outputs produced) -> Disclose (permutation and all openings
// revealed) -> Verify. Accept and Reject are terminal; a Reject is a
// final, reported outcome, never retried.
package protocol

import (
	"math/big"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	"verimix/audit"
	"verimix/pedersen"
	"verimix/prng"
	"verimix/shuffle"
)

// Record is one full protocol instance: the committed inputs, the
// permuted and rerandomized outputs, and the disclosed permutation
// connecting them. Created once per prover run and read-only afterwards;
// verifiers borrow it, never mutate it.
type Record struct {
	ID        string
	CreatedAt time.Time

	Inputs        []*big.Int
	InputOpenings []*big.Int

	Outputs        []*big.Int
	Messages       []*big.Int
	OutputOpenings []*big.Int

	Perm shuffle.Permutation
}

// Prover holds the domain parameters, the message batch and its openings.
// Stateless across calls: every ShuffleAndProve draws a fresh permutation
// and fresh rerandomizers.
type Prover struct {
	scheme   *pedersen.Scheme
	src      prng.Source
	messages []*big.Int
	openings []*big.Int
	inputs   []*big.Int
}

// NewProver creates a prover over an already-committed batch. messages and
// openings must be the batch the input commitments were created from.
func NewProver(scheme *pedersen.Scheme, src prng.Source, messages, openings, inputs []*big.Int) (*Prover, error) {
	if len(messages) != len(openings) || len(messages) != len(inputs) {
		return nil, xerrors.Errorf("prover: mismatched lengths: %d messages, %d openings, %d inputs",
			len(messages), len(openings), len(inputs))
	}
	return &Prover{
		scheme:   scheme,
		src:      src,
		messages: messages,
		openings: openings,
		inputs:   inputs,
	}, nil
}

// Commit commits a message batch and returns a ready prover along with the
// input commitments. Convenience for the common Setup->Commit step.
func Commit(scheme *pedersen.Scheme, src prng.Source, messages []*big.Int) (*Prover, error) {
	inputs, openings, err := scheme.CommitBatch(src, messages)
	if err != nil {
		return nil, xerrors.Errorf("prover: committing batch: %v", err)
	}
	return NewProver(scheme, src, messages, openings, inputs)
}

// Inputs returns the input commitments of the batch.
func (p *Prover) Inputs() []*big.Int {
	return p.inputs
}

// InputOpenings returns the openings of the input commitments.
func (p *Prover) InputOpenings() []*big.Int {
	return p.openings
}

// ShuffleAndProve draws a fresh random permutation and one rerandomizer
// per original element, runs the shuffle engine and returns the full
// disclosed record a verifier needs for subset checks.
func (p *Prover) ShuffleAndProve() (*Record, error) {
	n := len(p.messages)

	perm, err := shuffle.Random(p.src, n)
	if err != nil {
		return nil, xerrors.Errorf("prover: drawing permutation: %v", err)
	}

	// One rerandomizer per original element, in [1, p-2].
	order := p.scheme.Group().ExpOrder()
	upper := new(big.Int).Sub(order, big.NewInt(1))
	rerands := make([]*big.Int, n)
	for i := range rerands {
		rerands[i], err = prng.IntInclusive(p.src, big.NewInt(1), upper)
		if err != nil {
			return nil, xerrors.Errorf("prover: drawing rerandomizer %d: %v", i, err)
		}
	}

	res, err := shuffle.Shuffle(p.scheme, p.messages, p.openings, perm, rerands)
	if err != nil {
		return nil, xerrors.Errorf("prover: shuffling: %v", err)
	}

	rec := &Record{
		ID:             xid.New().String(),
		CreatedAt:      time.Now(),
		Inputs:         p.inputs,
		InputOpenings:  p.openings,
		Outputs:        res.Outputs,
		Messages:       res.Messages,
		OutputOpenings: res.Openings,
		Perm:           perm,
	}

	log.Debug().Str("runID", rec.ID).Int("n", n).Msg("shuffle record produced")
	return rec, nil
}

// Verifier holds the domain parameters only.
type Verifier struct {
	scheme *pedersen.Scheme
}

// NewVerifier creates a verifier for the given scheme.
func NewVerifier(scheme *pedersen.Scheme) *Verifier {
	return &Verifier{scheme: scheme}
}

// Check runs the subset consistency check on a disclosed transcript.
// Validation errors (empty subset, mismatched lengths) propagate; a failed
// equality is a plain false.
func (v *Verifier) Check(subset []int, inputs, inputOpenings, outputs, outputOpenings []*big.Int, perm shuffle.Permutation) (bool, error) {
	return audit.SubsetCheck(v.scheme, inputs, inputOpenings, outputs, outputOpenings, perm, subset)
}

// CheckRecord runs Check against a prover-produced record.
func (v *Verifier) CheckRecord(subset []int, rec *Record) (bool, error) {
	ok, err := v.Check(subset, rec.Inputs, rec.InputOpenings, rec.Outputs, rec.OutputOpenings, rec.Perm)
	if err != nil {
		return false, err
	}
	log.Debug().Str("runID", rec.ID).Ints("subset", subset).Bool("accepted", ok).Msg("subset check done")
	return ok, nil
}
