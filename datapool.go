package clipseq

import (
	"fmt"
	"math/rand/v2"
)

// PoolKind selects how a data pool produces its values.
type PoolKind int

const (
	PoolRandom PoolKind = iota // seeded pseudo-random floats in [0,1)
	PoolCycle                  // the declared values, over and over
)

var poolKindNames = []string{"random", "cycle"}

func (k PoolKind) String() string {
	if k < 0 || int(k) >= len(poolKindNames) {
		return fmt.Sprintf("PoolKind(%d)", int(k))
	}
	return poolKindNames[k]
}

// ParsePoolKind parses "random" or "cycle". The empty string means random.
func ParsePoolKind(s string) (PoolKind, error) {
	if s == "" {
		return PoolRandom, nil
	}
	for i, n := range poolKindNames {
		if n == s {
			return PoolKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pool kind %q", s)
}

// PoolDef is the declared, immutable part of a data pool.
type PoolDef struct {
	ID     PoolID
	Kind   PoolKind
	Seed   uint64
	Values []float64
}

// Pool is a named value source shared by the transforms that reference it.
// Reset returns it to the state it was declared in, so the same reads after a
// reset give the same values.
type Pool struct {
	def *PoolDef
	src *rand.PCG
	rng *rand.Rand
	pos int
}

func NewPool(def *PoolDef) *Pool {
	p := &Pool{def: def, src: rand.NewPCG(def.Seed, def.Seed^0x9e3779b97f4a7c15)}
	p.rng = rand.New(p.src)
	return p
}

func (p *Pool) ID() PoolID { return p.def.ID }

// Reset restarts the pool at its initial state.
func (p *Pool) Reset() {
	p.src.Seed(p.def.Seed, p.def.Seed^0x9e3779b97f4a7c15)
	p.pos = 0
}

// Float returns the next value of the pool. Random pools return values in
// [0,1); cycle pools return their declared values verbatim, or 0 if they have
// none.
func (p *Pool) Float() float64 {
	switch p.def.Kind {
	case PoolCycle:
		if len(p.def.Values) == 0 {
			return 0
		}
		v := p.def.Values[p.pos%len(p.def.Values)]
		p.pos++
		return v
	default:
		return p.rng.Float64()
	}
}

// Pools is the set of data pools of one player. Lookups of the empty id or of
// an undeclared id return a shared default random pool.
type Pools struct {
	pools    map[PoolID]*Pool
	order    []*Pool
	fallback *Pool
}

func NewPools(defs []*PoolDef) *Pools {
	ret := &Pools{
		pools:    make(map[PoolID]*Pool, len(defs)),
		fallback: NewPool(&PoolDef{ID: "default"}),
	}
	for _, d := range defs {
		p := NewPool(d)
		ret.pools[d.ID] = p
		ret.order = append(ret.order, p)
	}
	return ret
}

func (ps *Pools) Get(id PoolID) *Pool {
	if ps == nil {
		return nil
	}
	if p, ok := ps.pools[id]; ok {
		return p
	}
	return ps.fallback
}

// ResetAll restarts every pool, including the default one.
func (ps *Pools) ResetAll() {
	if ps == nil {
		return
	}
	for _, p := range ps.order {
		p.Reset()
	}
	ps.fallback.Reset()
}
