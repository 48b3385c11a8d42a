package ir

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc := &Document{
		Version: "1",
		Root: Node{
			Kind: KindColumn,
			Kids: []Node{
				{Kind: KindText, Attrs: []Attr{
					Interp("value", Segment{Text: "Hi "}, Segment{Path: Field("name")}),
				}},
				{Kind: KindRepeat, Source: Field("items"), Kids: []Node{{
					Kind:   KindText,
					Attrs:  []Attr{Bound("value", Field("it", "title"))},
					Events: []EventBinding{{Event: EventClick, Handler: "open"}},
				}}},
				{Kind: KindCustom, Name: "sparkline", Style: StyleProps{"width": "12"}},
			},
		},
		Styles: map[string]StyleProps{"title": {"bold": true}},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, perr := JSONParser{}.Parse("doc.ui.json", data)
	if perr != nil {
		t.Fatalf("parse: %v", perr)
	}
	if !reflect.DeepEqual(doc, back) {
		t.Errorf("round trip changed the document\n in: %+v\nout: %+v", doc, back)
	}
}

func TestJSONParserRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "syntax error",
			src:  "{\"version\": \"1\",\n  \"root\": {,}\n}",
			want: "invalid character",
		},
		{
			name: "unknown kind",
			src:  `{"version": "1", "root": {"kind": "marquee"}}`,
			want: "unknown node kind",
		},
		{
			name: "binding without path",
			src:  `{"version": "1", "root": {"kind": "text", "attrs": [{"name": "value", "kind": "binding"}]}}`,
			want: "has no path",
		},
		{
			name: "structural invariant",
			src:  `{"version": "1", "root": {"kind": "repeat", "source": "items"}}`,
			want: "exactly one template",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, perr := JSONParser{}.Parse("bad.ui.json", []byte(tt.src))
			if doc != nil || perr == nil {
				t.Fatalf("Parse accepted invalid input")
			}
			if !strings.Contains(perr.Message, tt.want) {
				t.Errorf("error %q, want substring %q", perr.Message, tt.want)
			}
			if perr.File != "bad.ui.json" || perr.Line < 1 || perr.Col < 1 {
				t.Errorf("bad location: %+v", perr)
			}
		})
	}
}

func TestJSONParserErrorLocation(t *testing.T) {
	src := "{\n  \"version\": \"1\",\n  \"root\": {,}\n}"
	_, perr := JSONParser{}.Parse("loc.ui.json", []byte(src))
	if perr == nil {
		t.Fatal("expected parse error")
	}
	if perr.Line != 3 {
		t.Errorf("line = %d, want 3", perr.Line)
	}
}
