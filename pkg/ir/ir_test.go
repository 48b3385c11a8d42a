package ir

import (
	"strings"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Path
		wantErr bool
	}{
		{
			name:  "single field",
			input: "heading",
			want:  Field("heading"),
		},
		{
			name:  "dotted fields",
			input: "user.address.city",
			want:  Field("user", "address", "city"),
		},
		{
			name:  "index step",
			input: "items[2].title",
			want:  Path{{Field: "items"}, {Index: 2, IsIndex: true}, {Field: "title"}},
		},
		{
			name:  "item prefix",
			input: "it.done",
			want:  Field("it", "done"),
		},
		{name: "empty", input: "", wantErr: true},
		{name: "leading dot", input: ".title", wantErr: true},
		{name: "trailing dot", input: "title.", wantErr: true},
		{name: "unterminated index", input: "items[2", wantErr: true},
		{name: "negative index", input: "items[-1]", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePath(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q): %v", tt.input, err)
			}
			if got.String() != tt.want.String() {
				t.Errorf("ParsePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPathStringRoundTrip(t *testing.T) {
	for _, s := range []string{"a", "a.b.c", "items[0]", "items[2].title", "it"} {
		p, err := ParsePath(s)
		if err != nil {
			t.Fatalf("ParsePath(%q): %v", s, err)
		}
		if p.String() != s {
			t.Errorf("round trip of %q = %q", s, p.String())
		}
	}
}

func TestFirstIsItem(t *testing.T) {
	if !Field("it", "done").FirstIsItem() {
		t.Error("it.done should resolve against the repeat element")
	}
	if Field("items").FirstIsItem() {
		t.Error("items should resolve against the root model")
	}
	if (Path{{Index: 0, IsIndex: true}}).FirstIsItem() {
		t.Error("index step is not the item field")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		root    Node
		wantErr string
	}{
		{
			name: "valid widget tree",
			root: Node{Kind: KindColumn, Kids: []Node{{Kind: KindText, Attrs: []Attr{Static("value", "hi")}}}},
		},
		{
			name:    "repeat without template",
			root:    Node{Kind: KindRepeat, Source: Field("items")},
			wantErr: "exactly one template",
		},
		{
			name: "repeat with two templates",
			root: Node{Kind: KindRepeat, Source: Field("items"), Kids: []Node{
				{Kind: KindText}, {Kind: KindText},
			}},
			wantErr: "exactly one template",
		},
		{
			name:    "conditional without source",
			root:    Node{Kind: KindConditional, Kids: []Node{{Kind: KindText}}},
			wantErr: "no source path",
		},
		{
			name:    "custom without name",
			root:    Node{Kind: KindCustom},
			wantErr: "no widget name",
		},
		{
			name:    "binding without path",
			root:    Node{Kind: KindText, Attrs: []Attr{{Name: "value", Kind: AttrBinding}}},
			wantErr: "empty binding path",
		},
		{
			name: "nested failure surfaces",
			root: Node{Kind: KindRow, Kids: []Node{
				{Kind: KindRepeat, Source: Field("items")},
			}},
			wantErr: "exactly one template",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Version: "1", Root: tt.root}
			err := doc.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for k := KindText; k <= KindCustom; k++ {
		parsed, ok := ParseKind(k.String())
		if !ok || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, ok)
		}
	}
	if _, ok := ParseKind("marquee"); ok {
		t.Error("unknown kind accepted")
	}
}

func TestWidgetName(t *testing.T) {
	n := Node{Kind: KindCustom, Name: "sparkline"}
	if got := n.WidgetName(); got != "sparkline" {
		t.Errorf("custom widget name = %q", got)
	}
	b := Node{Kind: KindButton}
	if got := b.WidgetName(); got != "button" {
		t.Errorf("button widget name = %q", got)
	}
}
