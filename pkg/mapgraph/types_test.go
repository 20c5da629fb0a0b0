package mapgraph

import "testing"

func TestParseNodeType(t *testing.T) {
	tests := []struct {
		in      string
		want    NodeType
		wantErr bool
	}{
		{"Battle", Battle, false},
		{"elite", Elite, false},
		{"BOSS", Boss, false},
		{"CardRemove", CardRemove, false},
		{"card_remove", CardRemove, false},
		{"card-remove", CardRemove, false},
		{" rest ", Rest, false},
		{"treasure", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNodeType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNodeType(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseNodeType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNodeTypeText(t *testing.T) {
	for _, typ := range AllTypes() {
		b, err := typ.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", typ, err)
		}
		var back NodeType
		if err := back.UnmarshalText(b); err != nil || back != typ {
			t.Errorf("UnmarshalText(%s) = %v, %v", b, back, err)
		}
	}
	if _, err := NodeType(42).MarshalText(); err == nil {
		t.Error("MarshalText accepted an invalid type")
	}
	if s := NodeType(42).String(); s != "NodeType(42)" {
		t.Errorf("String = %q", s)
	}
}
