package mapgen

import (
	"fmt"

	"github.com/matzehuels/runmap/pkg/mapgraph"
)

// Rule names a gameplay constraint checked by [Violations].
type Rule string

const (
	RulePinnedType         Rule = "pinned_type"
	RuleBattleRun          Rule = "battle_run"
	RuleShopUnderShop      Rule = "shop_under_shop"
	RuleLayerWithoutBattle Rule = "layer_without_battle"
)

// Violation is one broken constraint in a finished map.
type Violation struct {
	Rule   Rule
	Node   mapgraph.NodeID
	Layer  int
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at layer %d node %d: %s", v.Rule, v.Layer, v.Node, v.Detail)
}

// Violations checks the type rules every generated map must satisfy and
// returns what is broken. Layers reported with NO_SAFE_BATTLE are exempt
// from the battle-per-layer rule. The exemption is common: with
// [DefaultConfig] about three maps in five carry at least one such layer
// (1202 of seeds 0 to 1999). A map from [Generate] always yields none.
func Violations(g *mapgraph.Graph) []Violation {
	var out []Violation
	typ := func(id mapgraph.NodeID) mapgraph.NodeType {
		t, _ := g.Type(id)
		return t
	}

	for _, pin := range []struct {
		id   mapgraph.NodeID
		want mapgraph.NodeType
	}{{g.Start(), mapgraph.Battle}, {g.FinalRest(), mapgraph.Rest}, {g.Boss(), mapgraph.Boss}} {
		if got := typ(pin.id); got != pin.want {
			n, _ := g.Node(pin.id)
			out = append(out, Violation{RulePinnedType, pin.id, n.Layer, fmt.Sprintf("is %s, want %s", got, pin.want)})
		}
	}

	for _, n := range g.Nodes() {
		for _, p := range n.Parents {
			if n.Type == mapgraph.Shop && typ(p) == mapgraph.Shop {
				out = append(out, Violation{RuleShopUnderShop, n.ID, n.Layer, fmt.Sprintf("parent %d is a Shop", p)})
			}
			if n.Type != mapgraph.Battle || typ(p) != mapgraph.Battle {
				continue
			}
			for _, gp := range g.Parents(p) {
				if typ(gp) == mapgraph.Battle {
					out = append(out, Violation{RuleBattleRun, n.ID, n.Layer, fmt.Sprintf("path %d-%d-%d", gp, p, n.ID)})
				}
			}
		}
	}

	exempt := map[int]bool{}
	for _, w := range g.Warnings() {
		if w.Code == mapgraph.WarnNoSafeBattle {
			exempt[w.Layer] = true
		}
	}
	for i := 1; i <= g.LayerCount()-3; i++ {
		row := g.Layer(i)
		if len(row) < 2 || exempt[i] {
			continue
		}
		var special, battle bool
		for _, id := range row {
			switch typ(id) {
			case mapgraph.Elite, mapgraph.Shop, mapgraph.Rest:
				special = true
			case mapgraph.Battle:
				battle = true
			}
		}
		if special && !battle {
			out = append(out, Violation{RuleLayerWithoutBattle, row[0], i, "special nodes without a Battle"})
		}
	}
	return out
}
