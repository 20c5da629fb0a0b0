package mapgraph

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/seed"
)

// fixture returns a small valid map:
//
//	0 -> {1,2} -> 3 -> 4 -> 5 -> {6,7} -> 8 (rest) -> 9 (boss)
func fixture() ([]Node, [][]NodeID) {
	layers := [][]NodeID{{0}, {1, 2}, {3}, {4}, {5}, {6, 7}, {8}, {9}}
	edges := [][2]NodeID{
		{0, 1}, {0, 2}, {1, 3}, {2, 3}, {3, 4}, {4, 5},
		{5, 6}, {5, 7}, {6, 8}, {7, 8}, {8, 9},
	}
	types := []NodeType{Battle, Event, Shop, Elite, Rest, Battle, Battle, CardRemove, Rest, Boss}

	var nodes []Node
	for li, l := range layers {
		for slot, id := range l {
			nodes = append(nodes, Node{
				ID:       id,
				Type:     types[id],
				Layer:    li,
				Slot:     slot,
				Position: Position{X: float64(slot) * 200, Y: float64(li) * 300},
			})
		}
	}
	for _, e := range edges {
		nodes[e[0]].Children = append(nodes[e[0]].Children, e[1])
		nodes[e[1]].Parents = append(nodes[e[1]].Parents, e[0])
	}
	return nodes, layers
}

func mustGraph(t *testing.T) *Graph {
	t.Helper()
	nodes, layers := fixture()
	g, err := New(12345, nodes, layers, []Warning{{Code: WarnNoCandidate, Type: Elite, Layer: -1, Message: "no elite"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestGraphAccessors(t *testing.T) {
	g := mustGraph(t)

	if g.LayerCount() != 8 || g.NodeCount() != 10 || g.EdgeCount() != 11 {
		t.Errorf("counts = %d layers, %d nodes, %d edges", g.LayerCount(), g.NodeCount(), g.EdgeCount())
	}
	if g.Start() != 0 || g.FinalRest() != 8 || g.Boss() != 9 {
		t.Errorf("pinned = %d,%d,%d", g.Start(), g.FinalRest(), g.Boss())
	}
	if got := g.Layer(1); !slices.Equal(got, []NodeID{1, 2}) {
		t.Errorf("Layer(1) = %v", got)
	}
	if g.Layer(-1) != nil || g.Layer(8) != nil {
		t.Error("out-of-range Layer should be nil")
	}
	if !g.HasEdge(5, 7) || g.HasEdge(7, 5) {
		t.Error("HasEdge mismatch")
	}
	if typ, ok := g.Type(4); !ok || typ != Rest {
		t.Errorf("Type(4) = %v, %v", typ, ok)
	}
	if counts := g.TypeCounts(); counts[Battle] != 3 || counts[Rest] != 2 || counts[Boss] != 1 {
		t.Errorf("TypeCounts = %v", counts)
	}
	if len(g.Warnings()) != 1 || g.Seed() != 12345 {
		t.Errorf("Warnings = %v, Seed = %d", g.Warnings(), g.Seed())
	}
	if g.Crossings() != 0 {
		t.Errorf("Crossings = %d", g.Crossings())
	}
}

func TestGraphIsImmutable(t *testing.T) {
	g := mustGraph(t)
	before := g.Fingerprint()

	n, _ := g.Node(0)
	n.Children[0] = 9
	g.Layer(1)[0] = 7
	g.Children(5)[0] = 0
	g.Nodes()[3].Type = Boss

	if g.Fingerprint() != before {
		t.Fatal("fingerprint changed")
	}
	if n2, _ := g.Node(0); n2.Children[0] != 1 {
		t.Error("Node returned a shared slice")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate after caller mutation: %v", err)
	}
}

func TestFingerprintTracksContent(t *testing.T) {
	a := mustGraph(t)
	b := mustGraph(t)
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical graphs have different fingerprints")
	}

	nodes, layers := fixture()
	nodes[2].Position.X += 0.5
	c, err := New(12345, nodes, layers, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Fingerprint() == a.Fingerprint() {
		t.Error("moved node did not change fingerprint")
	}
	if len(a.Fingerprint()) != 64 {
		t.Errorf("fingerprint length = %d", len(a.Fingerprint()))
	}
}

func TestFingerprintCoversSeedAndWarnings(t *testing.T) {
	nodes, layers := fixture()
	warn := []Warning{{Code: WarnNoCandidate, Type: Elite, Layer: -1, Message: "no elite"}}
	base, err := New(12345, nodes, layers, warn)
	if err != nil {
		t.Fatal(err)
	}

	variants := map[string]struct {
		seed     int64
		warnings []Warning
	}{
		"seed":          {54321, warn},
		"no warnings":   {12345, nil},
		"warning code":  {12345, []Warning{{Code: WarnNoSafeBattle, Type: Elite, Layer: -1, Message: "no elite"}}},
		"warning layer": {12345, []Warning{{Code: WarnNoCandidate, Type: Elite, Layer: 3, Message: "no elite"}}},
		"warning text":  {12345, []Warning{{Code: WarnNoCandidate, Type: Elite, Layer: -1, Message: "no elites"}}},
	}
	for name, v := range variants {
		t.Run(name, func(t *testing.T) {
			g, err := New(seed.Seed(v.seed), nodes, layers, v.warnings)
			if err != nil {
				t.Fatal(err)
			}
			if g.Fingerprint() == base.Fingerprint() {
				t.Error("fingerprint did not change")
			}
		})
	}
}

func TestNewRejectsBrokenGraphs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]Node, [][]NodeID) ([]Node, [][]NodeID)
		want   string
	}{
		{"too few layers", func(n []Node, l [][]NodeID) ([]Node, [][]NodeID) {
			return n, l[:7]
		}, "at least 8"},
		{"two start nodes", func(n []Node, l [][]NodeID) ([]Node, [][]NodeID) {
			n[1].Layer = 0
			l[0], l[1] = []NodeID{0, 1}, []NodeID{2}
			return n, l
		}, "layer 0 holds 2"},
		{"orphan", func(n []Node, l [][]NodeID) ([]Node, [][]NodeID) {
			n[0].Children = []NodeID{2}
			n[1].Parents = nil
			return n, l
		}, "no parent"},
		{"asymmetric", func(n []Node, l [][]NodeID) ([]Node, [][]NodeID) {
			n[3].Parents = []NodeID{1}
			return n, l
		}, "missing from parent list"},
		{"skip layer", func(n []Node, l [][]NodeID) ([]Node, [][]NodeID) {
			n[0].Children = append(n[0].Children, 3)
			n[3].Parents = append(n[3].Parents, 0)
			return n, l
		}, "skips layers"},
		{"bad id", func(n []Node, l [][]NodeID) ([]Node, [][]NodeID) {
			n[4].ID = 40
			return n, l
		}, "has id 40"},
		{"unlisted node", func(n []Node, l [][]NodeID) ([]Node, [][]NodeID) {
			l[1] = []NodeID{1}
			return n, l
		}, "not in any layer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, layers := tt.mutate(fixture())
			_, err := New(1, nodes, layers, nil)
			if err == nil {
				t.Fatal("New succeeded on a broken graph")
			}
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("code = %v", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestConvergenceRequired(t *testing.T) {
	nodes, layers := fixture()
	// 5 -> 6 -> 8 only; 7 becomes a dead end reached from 5.
	nodes[7].Children = nil
	nodes[8].Parents = []NodeID{6}
	_, err := New(1, nodes, layers, nil)
	if err == nil || !strings.Contains(err.Error(), "only to the final rest") {
		t.Fatalf("err = %v, want convergence failure", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := mustGraph(t)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, g); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	first := buf.String()
	if !strings.Contains(first, `"type": "CardRemove"`) || !strings.HasSuffix(first, "}\n") {
		t.Errorf("unexpected encoding:\n%s", first)
	}

	back, err := ReadJSON(strings.NewReader(first))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if back.Fingerprint() != g.Fingerprint() || back.Seed() != g.Seed() {
		t.Error("round trip changed the graph")
	}
	again, _ := EncodeJSON(back)
	if string(again) != first {
		t.Error("encoding is not byte-stable")
	}
}

func TestReadJSONRejectsTampering(t *testing.T) {
	g := mustGraph(t)
	data, _ := EncodeJSON(g)

	edits := map[string][2]string{
		"type":    {`"type": "Shop"`, `"type": "Elite"`},
		"seed":    {`"seed": 12345`, `"seed": 12346`},
		"warning": {`"message": "no elite"`, `"message": "no shop"`},
	}
	for name, e := range edits {
		if !strings.Contains(string(data), e[0]) {
			t.Fatalf("%s: %q not in encoding", name, e[0])
		}
		tampered := strings.Replace(string(data), e[0], e[1], 1)
		if _, err := ReadJSON(strings.NewReader(tampered)); err == nil || !strings.Contains(err.Error(), "fingerprint mismatch") {
			t.Errorf("tampered %s: err = %v", name, err)
		}
	}
	if _, err := ReadJSON(strings.NewReader("{")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("truncated file: err = %v", err)
	}
	if _, err := ReadJSON(strings.NewReader(`{"layers":[[0]],"nodes":[]}`)); err == nil {
		t.Error("invalid structure accepted")
	}
}
