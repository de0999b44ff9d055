package audit

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"verimix/group"
	"verimix/pedersen"
	"verimix/prng"
	"verimix/shuffle"
)

type fixture struct {
	scheme         *pedersen.Scheme
	inputs         []*big.Int
	inputOpenings  []*big.Int
	outputs        []*big.Int
	outputOpenings []*big.Int
	perm           shuffle.Permutation
}

func newFixture(t *testing.T, values []int64) *fixture {
	t.Helper()
	scheme := pedersen.NewScheme(group.DefaultParams())
	src := prng.Crypto()

	messages := make([]*big.Int, len(values))
	for i, v := range values {
		messages[i] = big.NewInt(v)
	}
	inputs, inputOpenings, err := scheme.CommitBatch(src, messages)
	require.NoError(t, err)

	perm, err := shuffle.Random(src, len(messages))
	require.NoError(t, err)

	upper := new(big.Int).Sub(scheme.Group().ExpOrder(), big.NewInt(1))
	rerands := make([]*big.Int, len(messages))
	for i := range rerands {
		rerands[i], err = prng.IntInclusive(src, big.NewInt(1), upper)
		require.NoError(t, err)
	}

	res, err := shuffle.Shuffle(scheme, messages, inputOpenings, perm, rerands)
	require.NoError(t, err)

	return &fixture{
		scheme:         scheme,
		inputs:         inputs,
		inputOpenings:  inputOpenings,
		outputs:        res.Outputs,
		outputOpenings: res.Openings,
		perm:           perm,
	}
}

func (f *fixture) check(t *testing.T, subset []int) (bool, error) {
	t.Helper()
	return SubsetCheck(f.scheme, f.inputs, f.inputOpenings, f.outputs, f.outputOpenings, f.perm, subset)
}

func Test_SubsetCheck_Honest_RandomSubsets(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})
	n := len(f.inputs)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		k := 1 + rng.Intn(n)
		subset := rng.Perm(n)[:k]

		ok, err := f.check(t, subset)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func Test_SubsetCheck_Honest_FullSet(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	full := []int{0, 1, 2, 3}
	ok, err := f.check(t, full)
	require.NoError(t, err)
	require.True(t, ok)
}

func Test_SubsetCheck_SingleIndex(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	for i := 0; i < len(f.inputs); i++ {
		ok, err := f.check(t, []int{i})
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func Test_SubsetCheck_Corrupted_Output_Fails(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	// Corrupt the output that original index 0 moved to, then audit a
	// subset touching it.
	j := f.perm.Inverse()[0]
	f.outputs[j] = f.scheme.Group().Mul(f.outputs[j], big.NewInt(5))

	ok, err := f.check(t, []int{0, 1})
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_SubsetCheck_Wrong_Opening_Fails(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	j := f.perm.Inverse()[2]
	f.outputOpenings[j] = new(big.Int).Add(f.outputOpenings[j], big.NewInt(1))

	ok, err := f.check(t, []int{2})
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_SubsetCheck_Wrong_Permutation_Claim_Fails(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	// Claim a different permutation than the one actually used. With
	// distinct messages the product relation breaks for any subset that
	// maps to a different output multiset.
	swapped := make([]int, len(f.perm))
	copy(swapped, f.perm)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	wrongPerm, err := shuffle.New(swapped)
	require.NoError(t, err)

	ok, err := SubsetCheck(f.scheme, f.inputs, f.inputOpenings, f.outputs, f.outputOpenings, wrongPerm, []int{f.perm[0]})
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_SubsetCheck_Empty_Subset_Is_Error(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	_, err := f.check(t, []int{})
	require.Error(t, err)
}

func Test_SubsetCheck_OutOfRange_Index_Is_Error(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	_, err := f.check(t, []int{4})
	require.Error(t, err)

	_, err = f.check(t, []int{-1})
	require.Error(t, err)
}

func Test_SubsetCheck_Duplicate_Index_Is_Error(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	_, err := f.check(t, []int{1, 1})
	require.Error(t, err)
}

func Test_SubsetCheck_Length_Mismatch_Is_Error(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	_, err := SubsetCheck(f.scheme, f.inputs[:3], f.inputOpenings, f.outputs, f.outputOpenings, f.perm, []int{0})
	require.Error(t, err)
}

func Test_ProductCommitments(t *testing.T) {
	f := newFixture(t, []int64{10, 20, 30, 40})

	grp := f.scheme.Group()
	expected := grp.Mul(f.inputs[1], f.inputs[3])
	require.Zero(t, ProductCommitments(f.scheme, f.inputs, []int{1, 3}).Cmp(expected))
}
