// Package transcript implements a Merlin-style protocol transcript on top
// of the STROBE construction. The protocol core uses it as a domain-
// separated, keyable PRF: the prng package derives deterministic
// randomness streams from it for reproducible runs.
package transcript

import (
	cryptorand "crypto/rand"
	"encoding/binary"

	"github.com/mimoo/StrobeGo/strobe"
)

const (
	secLevel    = 128
	merlinLabel = "Merlin v1.0"
	rngLabel    = "rng"
	domainSep   = "dom-sep"
)

// Transcript accumulates labeled protocol messages.
type Transcript struct {
	strobe strobe.Strobe
	label  string
}

// New creates a transcript domain-separated by label.
func New(label string) Transcript {
	st := strobe.InitStrobe(merlinLabel, secLevel)

	tr := Transcript{
		strobe: st,
		label:  label,
	}
	tr.AppendMessage([]byte(domainSep), []byte(label))
	return tr
}

// AppendMessage absorbs a labeled message into the transcript state.
func (tr *Transcript) AppendMessage(label, message []byte) {
	sizeBuffer := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBuffer[0:], uint32(len(message)))
	dataLen := append(label, sizeBuffer...)

	tr.strobe.AD(true, dataLen)
	tr.strobe.AD(false, message)
}

// GetChallengeBytes squeezes outputLen challenge bytes out of the current
// transcript state.
func (tr *Transcript) GetChallengeBytes(label []byte, outputLen int) []byte {
	sizeBuffer := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBuffer[0:], uint32(outputLen))
	dataLen := append(label, sizeBuffer...)

	tr.strobe.AD(true, dataLen)
	return tr.strobe.PRF(outputLen)
}

// BuildRng forks the transcript into an RNG builder. The fork is keyed,
// never rewound: the parent transcript is unaffected.
func (tr *Transcript) BuildRng() RngBuilder {
	return RngBuilder{
		strobe: *tr.strobe.Clone(),
	}
}

// RngBuilder accumulates key material for a transcript-derived RNG.
type RngBuilder struct {
	strobe strobe.Strobe
}

// RekeyWitnessBytes mixes secret witness bytes into the RNG state.
func (b *RngBuilder) RekeyWitnessBytes(label, witness []byte) {
	sizeBuffer := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBuffer[0:], uint32(len(witness)))
	dataLen := append(label, sizeBuffer...)

	b.strobe.AD(true, dataLen)
	b.strobe.KEY(witness)
}

// Finalize mixes fresh system entropy on top of the accumulated witness
// material and returns the RNG.
func (b *RngBuilder) Finalize(label []byte) (*Rng, error) {
	entropy := make([]byte, 32)
	_, err := cryptorand.Read(entropy)
	if err != nil {
		return nil, err
	}
	return b.finalize(label, entropy), nil
}

// FinalizeDeterministic skips the entropy mix-in, yielding an RNG fully
// determined by the transcript and witness bytes. This is what seeded,
// reproducible protocol runs are built on.
func (b *RngBuilder) FinalizeDeterministic(label []byte) *Rng {
	return b.finalize(label, nil)
}

func (b *RngBuilder) finalize(label, entropy []byte) *Rng {
	b.strobe.AD(true, []byte(rngLabel))
	if entropy != nil {
		b.strobe.KEY(entropy)
	}
	return &Rng{
		strobe: *b.strobe.Clone(),
	}
}

// Rng is a PRF-backed randomness stream.
type Rng struct {
	strobe strobe.Strobe
}

// GetRandomness squeezes outputLen pseudo-random bytes.
func (r *Rng) GetRandomness(outputLen int) []byte {
	return r.strobe.PRF(outputLen)
}
