package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The IR serializes to a stable JSON form. The build command consumes it, and
// JSONParser below is the reference Parser implementation for front ends that
// hand over pre-parsed documents.

// MarshalJSON encodes the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name, rejecting unknown kinds.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseKind(s)
	if !ok {
		return fmt.Errorf("unknown node kind %q", s)
	}
	*k = parsed
	return nil
}

// MarshalJSON encodes the path in its textual form ("items[2].title").
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes the textual path form.
func (p *Path) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePath(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type attrWire struct {
	Name  string    `json:"name"`
	Kind  string    `json:"kind"`
	Value any       `json:"value,omitempty"`
	Path  Path      `json:"path,omitempty"`
	Parts []Segment `json:"parts,omitempty"`
}

// MarshalJSON encodes the attribute with its variant tag.
func (a Attr) MarshalJSON() ([]byte, error) {
	return json.Marshal(attrWire{
		Name:  a.Name,
		Kind:  a.Kind.String(),
		Value: a.Value,
		Path:  a.Path,
		Parts: a.Parts,
	})
}

// UnmarshalJSON decodes a tagged attribute variant.
func (a *Attr) UnmarshalJSON(data []byte) error {
	var w attrWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.Name = w.Name
	a.Value = nil
	a.Path = nil
	a.Parts = nil
	switch w.Kind {
	case "static":
		a.Kind = AttrStatic
		a.Value = w.Value
	case "binding":
		a.Kind = AttrBinding
		if len(w.Path) == 0 {
			return fmt.Errorf("binding attribute %q has no path", w.Name)
		}
		a.Path = w.Path
	case "interpolated":
		a.Kind = AttrInterpolated
		a.Parts = w.Parts
	default:
		return fmt.Errorf("unknown attribute kind %q", w.Kind)
	}
	return nil
}

// JSONParser loads Documents from their serialized JSON form. It satisfies
// the Parser contract so the reload coordinator and the build command can run
// against pre-parsed IR without the textual front end.
type JSONParser struct{}

// Parse decodes and validates a serialized Document.
func (JSONParser) Parse(file string, src []byte) (*Document, *ParseError) {
	var d Document
	if err := json.Unmarshal(src, &d); err != nil {
		line, col := offsetPosition(src, jsonErrorOffset(err))
		return nil, &ParseError{Message: err.Error(), File: file, Line: line, Col: col}
	}
	if err := d.Validate(); err != nil {
		return nil, &ParseError{Message: err.Error(), File: file, Line: 1, Col: 1}
	}
	return &d, nil
}

func jsonErrorOffset(err error) int64 {
	switch e := err.(type) {
	case *json.SyntaxError:
		return e.Offset
	case *json.UnmarshalTypeError:
		return e.Offset
	}
	return 0
}

func offsetPosition(src []byte, off int64) (line, col int) {
	if off <= 0 || off > int64(len(src)) {
		return 1, 1
	}
	head := src[:off]
	line = bytes.Count(head, []byte{'\n'}) + 1
	col = int(off) - bytes.LastIndexByte(head, '\n')
	return line, col
}
