package mapgen

import (
	"fmt"
	"slices"

	"github.com/matzehuels/runmap/pkg/dag"
	"github.com/matzehuels/runmap/pkg/mapgraph"
)

// assignTypes gives every node its encounter type. The order of steps is
// fixed: pinned types, guaranteed singles, the elite chains, the random
// fill and finally one repair sweep.
func (b *builder) assignTypes() {
	c := b.cfg
	b.types = make([]mapgraph.NodeType, b.g.NodeCount()) // Battle is the zero value

	b.types[b.g.NodesInRow(c.boss())[0]] = mapgraph.Boss
	b.types[b.g.NodesInRow(c.finalRest())[0]] = mapgraph.Rest

	// The pool is every unpinned node in id order.
	var pool []dag.NodeID
	for i := range b.g.NodeCount() {
		id := dag.NodeID(i)
		if !c.pinned(b.layerOf(id)) {
			pool = append(pool, id)
		}
	}

	last := c.finalRest() - 1
	for _, t := range []mapgraph.NodeType{mapgraph.Event, mapgraph.Shop, mapgraph.CardRemove} {
		if _, ok := b.place(&pool, t, 1, last); !ok {
			b.warn(mapgraph.WarnNoCandidate, t, -1, fmt.Sprintf("no %s candidate in layers 1-%d", t, last))
		}
	}

	b.placeElites(&pool)
	b.fill(pool)
	b.repair()
}

// placeElites places both elites. The first one pulls a Rest into the
// layer below it and, when that succeeds, a Shop into the layer below the
// Rest unless that layer already has one.
func (b *builder) placeElites(pool *[]dag.NodeID) {
	lo, hi := b.cfg.MinEliteLayer, b.cfg.finalRest()-2

	e1, ok := b.placeElite(pool, lo, hi, 2, 3)
	if ok {
		restLayer := b.layerOf(e1) + 1
		if rest, ok := b.place(pool, mapgraph.Rest, restLayer, restLayer); ok {
			b.placeShopBelow(pool, b.layerOf(rest)+1)
		} else {
			b.warn(mapgraph.WarnNoCandidate, mapgraph.Rest, restLayer, fmt.Sprintf("no Rest candidate in layer %d after elite", restLayer))
		}
	}

	prefLo := 4
	if ok {
		prefLo = max(4, b.layerOf(e1)+2)
	}
	b.placeElite(pool, lo, hi, prefLo, 5)
}

// placeElite tries [prefLo, prefHi] ∩ [lo, hi] first and falls back to the
// whole valid range.
func (b *builder) placeElite(pool *[]dag.NodeID, lo, hi, prefLo, prefHi int) (dag.NodeID, bool) {
	pl, ph := max(lo, prefLo), min(hi, prefHi)
	if pl <= ph {
		if id, ok := b.place(pool, mapgraph.Elite, pl, ph); ok {
			return id, true
		}
	}
	id, ok := b.place(pool, mapgraph.Elite, lo, hi)
	if !ok {
		b.warn(mapgraph.WarnNoCandidate, mapgraph.Elite, -1, fmt.Sprintf("no Elite candidate in layers %d-%d", lo, hi))
	}
	return id, ok
}

func (b *builder) placeShopBelow(pool *[]dag.NodeID, layer int) {
	if b.cfg.pinned(layer) || b.layerHas(layer, mapgraph.Shop) {
		return
	}
	if _, ok := b.place(pool, mapgraph.Shop, layer, layer); !ok {
		b.warn(mapgraph.WarnNoCandidate, mapgraph.Shop, layer, fmt.Sprintf("no Shop candidate in layer %d after rest", layer))
	}
}

// place picks a random pool node in layers [lo, hi], gives it type t and
// removes it from the pool.
func (b *builder) place(pool *[]dag.NodeID, t mapgraph.NodeType, lo, hi int) (dag.NodeID, bool) {
	var candidates []dag.NodeID
	for _, id := range *pool {
		if l := b.layerOf(id); l >= lo && l <= hi {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return dag.None, false
	}
	id := candidates[b.rng.Intn(len(candidates))]
	b.types[id] = t
	*pool = slices.DeleteFunc(*pool, func(p dag.NodeID) bool { return p == id })
	return id, true
}

// fill makes floor(len*BattleRatio) pool nodes Battle, chosen without
// replacement, and draws a weighted type for each remaining node in id
// order.
func (b *builder) fill(pool []dag.NodeID) {
	shuffled := slices.Clone(pool)
	battles := int(float64(len(pool)) * b.cfg.BattleRatio)
	chosen := make(map[dag.NodeID]bool, battles)
	for k := range battles {
		j := k + b.rng.Intn(len(shuffled)-k)
		shuffled[k], shuffled[j] = shuffled[j], shuffled[k]
		chosen[shuffled[k]] = true
		b.types[shuffled[k]] = mapgraph.Battle
	}

	w := b.cfg.FillWeights
	for _, id := range pool {
		if chosen[id] {
			continue
		}
		switch r := b.rng.Intn(w.total()); {
		case r < w.Event:
			b.types[id] = mapgraph.Event
		case r < w.Event+w.Shop:
			b.types[id] = mapgraph.Shop
		default:
			b.types[id] = mapgraph.CardRemove
		}
	}
}

// repair sweeps the unpinned layers top-down. A layer is only ever changed
// while it is the current layer, and the rules read nothing below it, so
// each rule holds for every layer above the sweep position:
//
//   - a Shop under a Shop becomes an Event
//   - a Battle ending a run of three Battles becomes an Event
//   - a layer of two or more nodes holding a Shop, Elite or Rest but no
//     Battle turns its first safe Event or CardRemove into a Battle
func (b *builder) repair() {
	for i := 1; i <= b.cfg.finalRest()-1; i++ {
		row := b.g.NodesInRow(i)

		for _, id := range row {
			if b.types[id] == mapgraph.Shop && b.anyParent(id, b.isType(mapgraph.Shop)) {
				b.types[id] = mapgraph.Event
			}
		}
		for _, id := range row {
			if b.types[id] == mapgraph.Battle && b.endsBattleRun(id) {
				b.types[id] = mapgraph.Event
			}
		}

		if len(row) < 2 || b.layerHas(i, mapgraph.Battle) ||
			!(b.layerHas(i, mapgraph.Shop) || b.layerHas(i, mapgraph.Elite) || b.layerHas(i, mapgraph.Rest)) {
			continue
		}
		fixed := false
		for _, id := range row {
			if t := b.types[id]; (t == mapgraph.Event || t == mapgraph.CardRemove) && !b.endsBattleRun(id) {
				b.types[id] = mapgraph.Battle
				fixed = true
				break
			}
		}
		if !fixed {
			b.warn(mapgraph.WarnNoSafeBattle, mapgraph.Battle, i, fmt.Sprintf("layer %d has no Battle and no safe node to convert", i))
		}
	}
}

// endsBattleRun reports whether id has a Battle parent that itself has a
// Battle parent, so a Battle at id would complete three in a row.
func (b *builder) endsBattleRun(id dag.NodeID) bool {
	battle := b.isType(mapgraph.Battle)
	return b.anyParent(id, func(p dag.NodeID) bool {
		return battle(p) && b.anyParent(p, battle)
	})
}

func (b *builder) isType(t mapgraph.NodeType) func(dag.NodeID) bool {
	return func(id dag.NodeID) bool { return b.types[id] == t }
}

func (b *builder) anyParent(id dag.NodeID, pred func(dag.NodeID) bool) bool {
	return slices.ContainsFunc(b.g.Parents(id), pred)
}

func (b *builder) layerHas(layer int, t mapgraph.NodeType) bool {
	return slices.ContainsFunc(b.g.NodesInRow(layer), b.isType(t))
}
