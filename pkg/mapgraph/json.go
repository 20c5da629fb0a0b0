package mapgraph

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/seed"
)

// document is the on-disk form of a graph.
type document struct {
	Seed        seed.Seed  `json:"seed"`
	Fingerprint string     `json:"fingerprint"`
	Layers      [][]NodeID `json:"layers"`
	Nodes       []Node     `json:"nodes"`
	Warnings    []Warning  `json:"warnings"`
}

// MarshalJSON implements json.Marshaler.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.document())
}

// UnmarshalJSON implements json.Unmarshaler. The decoded graph is validated
// and its fingerprint, when present, must match the content.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	parsed, err := New(doc.Seed, doc.Nodes, doc.Layers, doc.Warnings)
	if err != nil {
		return err
	}
	if doc.Fingerprint != "" && doc.Fingerprint != parsed.fingerprint {
		return errors.New(errors.ErrCodeInvalidFormat, "fingerprint mismatch: file has %s, content hashes to %s", doc.Fingerprint, parsed.fingerprint)
	}
	*g = *parsed
	return nil
}

// WriteJSON writes the graph as indented JSON followed by a newline. The
// output is byte-stable for a given graph.
func WriteJSON(w io.Writer, g *Graph) error {
	data, err := json.MarshalIndent(g.document(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ReadJSON decodes and validates a graph written by [WriteJSON].
func ReadJSON(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var g Graph
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &g, nil
}

// EncodeJSON returns the [WriteJSON] encoding as bytes.
func EncodeJSON(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Graph) document() document {
	doc := document{
		Seed:        g.seed,
		Fingerprint: g.fingerprint,
		Layers:      make([][]NodeID, len(g.layers)),
		Nodes:       g.Nodes(),
		Warnings:    g.Warnings(),
	}
	for i, l := range g.layers {
		doc.Layers[i] = append([]NodeID{}, l...)
	}
	if doc.Warnings == nil {
		doc.Warnings = []Warning{}
	}
	return doc
}
