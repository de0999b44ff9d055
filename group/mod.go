package group

import (
	"math/big"

	"golang.org/x/xerrors"
)

// Group abstracts the cyclic-group operations the commitment, shuffle and
// audit layers rely on, so the finite-field backend can later be swapped
// (e.g. for an elliptic-curve group) without touching their logic.
type Group interface {
	// Exp computes base^e in the group.
	Exp(base, e *big.Int) *big.Int

	// Mul computes a*b in the group.
	Mul(a, b *big.Int) *big.Int

	// Equal reports whether a and b denote the same group element.
	Equal(a, b *big.Int) bool

	// ReduceExp maps an arbitrary integer into the exponent group.
	// The result is always non-negative.
	ReduceExp(e *big.Int) *big.Int

	// ExpOrder returns the modulus of the exponent group.
	ExpOrder() *big.Int
}

// Params holds the shared domain parameters: a prime modulus and two
// generators of a subgroup of Z_p^*, assumed independent (no known
// discrete-log relation between them). They are fixed at setup and never
// regenerated at runtime.
//
// Vetting the parameters (primality of P, order and independence of the
// generators) is owned by whoever supplies them, normally the config
// loader. Nothing below re-checks those properties.
type Params struct {
	P *big.Int
	G *big.Int
	H *big.Int
}

// referencePrime is the modulus used by the research prototype this
// package derives from. Toy-sized; real deployments need 2048+ bits.
const referencePrime = "208351617316091241234326746312124448251235562226470491514186331217050270460481"

// DefaultParams returns the reference domain parameters (g=2, h=3 over the
// prototype prime). Suitable for tests and demos only.
func DefaultParams() Params {
	p, _ := new(big.Int).SetString(referencePrime, 10)
	return Params{
		P: p,
		G: big.NewInt(2),
		H: big.NewInt(3),
	}
}

// Validate performs the structural checks that are in scope for this
// package: the modulus is large enough to host two distinct generators and
// both generators are proper elements. Primality and generator
// independence are explicitly NOT checked here.
func (pr Params) Validate() error {
	if pr.P == nil || pr.G == nil || pr.H == nil {
		return xerrors.New("group params: nil parameter")
	}
	if pr.P.Cmp(big.NewInt(3)) <= 0 {
		return xerrors.Errorf("group params: modulus %v too small", pr.P)
	}
	one := big.NewInt(1)
	if pr.G.Cmp(one) <= 0 || pr.G.Cmp(pr.P) >= 0 {
		return xerrors.Errorf("group params: generator g=%v out of range", pr.G)
	}
	if pr.H.Cmp(one) <= 0 || pr.H.Cmp(pr.P) >= 0 {
		return xerrors.Errorf("group params: generator h=%v out of range", pr.H)
	}
	if pr.G.Cmp(pr.H) == 0 {
		return xerrors.New("group params: generators must be distinct")
	}
	return nil
}

// ModGroup is the multiplicative group backend over Z_p^*. Exponent
// arithmetic happens modulo p-1.
type ModGroup struct {
	p   *big.Int
	pm1 *big.Int
}

// NewModGroup creates the finite-field backend for modulus p.
func NewModGroup(p *big.Int) *ModGroup {
	return &ModGroup{
		p:   new(big.Int).Set(p),
		pm1: new(big.Int).Sub(p, big.NewInt(1)),
	}
}

// Exp implements group.Group.
func (g *ModGroup) Exp(base, e *big.Int) *big.Int {
	return new(big.Int).Exp(base, g.ReduceExp(e), g.p)
}

// Mul implements group.Group.
func (g *ModGroup) Mul(a, b *big.Int) *big.Int {
	res := new(big.Int).Mul(a, b)
	return res.Mod(res, g.p)
}

// Equal implements group.Group.
func (g *ModGroup) Equal(a, b *big.Int) bool {
	return a.Cmp(b) == 0
}

// ReduceExp implements group.Group. big.Int.Mod is Euclidean, so negative
// exponents (opening differences in the subset check) reduce to their
// non-negative representative.
func (g *ModGroup) ReduceExp(e *big.Int) *big.Int {
	return new(big.Int).Mod(e, g.pm1)
}

// ExpOrder implements group.Group.
func (g *ModGroup) ExpOrder() *big.Int {
	return new(big.Int).Set(g.pm1)
}
