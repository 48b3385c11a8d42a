package instr

import "testing"

func TestEqualToleratesNilVersusEmpty(t *testing.T) {
	// The interpreter leaves maps nil when a node has no attrs; generated
	// code may build empty maps. Both spell "no entries".
	a := &Instruction{Widget: "text", Attrs: nil, Events: nil}
	b := &Instruction{Widget: "text", Attrs: map[string]any{}, Events: map[string]string{}}
	if !Equal(a, b) {
		t.Error("nil and empty maps compared unequal")
	}
}

func TestEqual(t *testing.T) {
	base := func() *Instruction {
		return &Instruction{
			Widget: "row",
			Key:    "1",
			Attrs:  map[string]any{"value": "x"},
			Events: map[string]string{"click": "go"},
			Kids:   []Instruction{{Widget: "text"}},
		}
	}
	if !Equal(base(), base()) {
		t.Fatal("identical trees compared unequal")
	}

	tests := []struct {
		name   string
		mutate func(*Instruction)
	}{
		{"widget", func(n *Instruction) { n.Widget = "column" }},
		{"key", func(n *Instruction) { n.Key = "2" }},
		{"attr value", func(n *Instruction) { n.Attrs["value"] = "y" }},
		{"handler", func(n *Instruction) { n.Events["click"] = "stop" }},
		{"kid count", func(n *Instruction) { n.Kids = nil }},
		{"kid widget", func(n *Instruction) { n.Kids[0].Widget = "image" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base()
			tt.mutate(other)
			if Equal(base(), other) {
				t.Errorf("%s difference not detected", tt.name)
			}
		})
	}
}

func TestCount(t *testing.T) {
	tree := &Instruction{
		Widget: "column",
		Kids: []Instruction{
			{Widget: "text"},
			{Widget: "row", Kids: []Instruction{{Widget: "text"}, {Widget: "text"}}},
		},
	}
	if got := tree.Count(); got != 5 {
		t.Errorf("Count = %d, want 5", got)
	}
	var nilTree *Instruction
	if got := nilTree.Count(); got != 0 {
		t.Errorf("nil Count = %d", got)
	}
}
