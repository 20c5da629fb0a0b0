package mapgraph

import (
	"fmt"
	"strings"

	"github.com/matzehuels/runmap/pkg/dag"
)

// NodeID identifies a node within one graph. IDs are dense, start at zero and
// are assigned layer by layer in creation order.
type NodeID = dag.NodeID

// None is the NodeID returned when no node applies.
const None = dag.None

// NodeType is the gameplay encounter a node represents.
type NodeType uint8

const (
	Battle NodeType = iota
	Elite
	Boss
	Event
	Shop
	Rest
	CardRemove
)

var typeNames = [...]string{
	Battle:     "Battle",
	Elite:      "Elite",
	Boss:       "Boss",
	Event:      "Event",
	Shop:       "Shop",
	Rest:       "Rest",
	CardRemove: "CardRemove",
}

// AllTypes returns every node type in declaration order.
func AllTypes() []NodeType {
	return []NodeType{Battle, Elite, Boss, Event, Shop, Rest, CardRemove}
}

func (t NodeType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", t)
}

// ParseNodeType parses a type name case-insensitively. "card_remove" and
// "card-remove" are accepted for CardRemove.
func ParseNodeType(s string) (NodeType, error) {
	norm := strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for i, name := range typeNames {
		if strings.ToLower(name) == norm {
			return NodeType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t NodeType) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, fmt.Errorf("invalid node type %d", t)
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *NodeType) UnmarshalText(b []byte) error {
	v, err := ParseNodeType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Position is a node's location in map space. Y grows with the layer index.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a read-only copy of one encounter. Its slices are owned by the
// caller.
type Node struct {
	ID       NodeID   `json:"id"`
	Type     NodeType `json:"type"`
	Layer    int      `json:"layer"`
	Slot     int      `json:"slot"`
	Position Position `json:"position"`
	Parents  []NodeID `json:"parents"`
	Children []NodeID `json:"children"`
}

func (n Node) clone() Node {
	n.Parents = append([]NodeID{}, n.Parents...)
	n.Children = append([]NodeID{}, n.Children...)
	return n
}

// WarningCode classifies a soft placement shortfall.
type WarningCode string

const (
	// WarnNoCandidate means a guaranteed type had no eligible node.
	WarnNoCandidate WarningCode = "NO_CANDIDATE"
	// WarnNoSafeBattle means a layer needed a Battle but every candidate
	// would have completed a run of three Battles.
	WarnNoSafeBattle WarningCode = "NO_SAFE_BATTLE"
)

// Warning records a placement that generation skipped. Layer is -1 when the
// shortfall is not tied to one layer.
type Warning struct {
	Code    WarningCode `json:"code"`
	Type    NodeType    `json:"type"`
	Layer   int         `json:"layer"`
	Message string      `json:"message"`
}
