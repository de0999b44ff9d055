// Package audit spot-checks a disclosed shuffle transcript: for a chosen
// subset of original indices it verifies that the product of original
// commitments equals the product of the corresponding shuffled
// commitments, rerandomized by the disclosed opening differences.
//
// The verifier is handed the permutation and both full opening sets, so
// this proves algebraic self-consistency of a disclosed transcript only.
// It is NOT a zero-knowledge shuffle argument; a production verifiable
// shuffle proves the same relation without revealing either.
package audit

import (
	"math/big"

	"golang.org/x/xerrors"

	"verimix/pedersen"
	"verimix/shuffle"
)

// ProductCommitments multiplies the commitments at the given indices in
// the scheme's group.
func ProductCommitments(scheme *pedersen.Scheme, commitments []*big.Int, indices []int) *big.Int {
	grp := scheme.Group()
	result := big.NewInt(1)
	for _, i := range indices {
		result = grp.Mul(result, commitments[i])
	}
	return result
}

// SubsetCheck verifies, over the given non-empty subset of original
// indices I:
//
//	Π_{i∈I} inputs[i]  ==  h^R · Π_{i∈I} outputs[inv(i)]
//
// with R = Σ_{i∈I} (inputOpenings[i] - outputOpenings[inv(i)]) mod (p-1),
// where inv is the inverse of perm. The relation holds for an honest
// shuffle because the g^message factors cancel pairwise, leaving exactly
// the opening differences. Any tampered commitment, message or opening in
// the subset breaks the equality.
//
// Malformed arguments (empty subset, duplicate or out-of-range index,
// mismatched lengths) abort with a validation error; a failed equality is
// a plain false.
func SubsetCheck(
	scheme *pedersen.Scheme,
	inputs, inputOpenings, outputs, outputOpenings []*big.Int,
	perm shuffle.Permutation,
	subset []int,
) (bool, error) {
	if len(subset) == 0 {
		return false, xerrors.New("audit: subset must be non-empty")
	}

	n := len(perm)
	if len(inputs) != n || len(inputOpenings) != n || len(outputs) != n || len(outputOpenings) != n {
		return false, xerrors.Errorf(
			"audit: mismatched lengths: %d inputs, %d input openings, %d outputs, %d output openings, %d permutation",
			len(inputs), len(inputOpenings), len(outputs), len(outputOpenings), n)
	}

	seen := make(map[int]struct{}, len(subset))
	for _, i := range subset {
		if i < 0 || i >= n {
			return false, xerrors.Errorf("audit: subset index %d out of range [0, %d)", i, n)
		}
		if _, dup := seen[i]; dup {
			return false, xerrors.Errorf("audit: duplicate subset index %d", i)
		}
		seen[i] = struct{}{}
	}

	grp := scheme.Group()
	inv := perm.Inverse()

	lhs := ProductCommitments(scheme, inputs, subset)

	rhs := big.NewInt(1)
	expSum := big.NewInt(0)
	for _, i := range subset {
		j := inv[i]
		rhs = grp.Mul(rhs, outputs[j])
		// Input minus output opening; the order matters.
		diff := new(big.Int).Sub(inputOpenings[i], outputOpenings[j])
		expSum = grp.ReduceExp(expSum.Add(expSum, diff))
	}
	rhs = grp.Mul(rhs, grp.Exp(scheme.H(), expSum))

	return grp.Equal(lhs, rhs), nil
}
