package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemField is the reserved first path segment that refers to the current
// repeat element instead of the root model. "it" alone is the element itself;
// "it.title" is a field of it.
const ItemField = "it"

// Step is one field-access or index step of a binding path.
type Step struct {
	Field   string
	Index   int
	IsIndex bool
}

func (s Step) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Field
}

// Path is a non-empty sequence of field/index steps into the model. Paths
// carry no side-effecting operations by construction.
type Path []Step

// Field builds a single-field path, the common case.
func Field(names ...string) Path {
	p := make(Path, len(names))
	for i, n := range names {
		p[i] = Step{Field: n}
	}
	return p
}

// FirstIsItem reports whether the path resolves against the current repeat
// element rather than the root model.
func (p Path) FirstIsItem() bool {
	return len(p) > 0 && !p[0].IsIndex && p[0].Field == ItemField
}

func (p Path) String() string {
	var b strings.Builder
	for i, st := range p {
		if st.IsIndex {
			b.WriteString(st.String())
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(st.Field)
	}
	return b.String()
}

// ParsePath parses the textual form used by the serialized IR, e.g.
// "items[2].title". It rejects empty paths and empty segments.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("empty binding path")
	}
	var p Path
	rest := s
	for rest != "" {
		switch rest[0] {
		case '.':
			if len(p) == 0 {
				return nil, fmt.Errorf("binding path %q starts with '.'", s)
			}
			rest = rest[1:]
			if rest == "" {
				return nil, fmt.Errorf("binding path %q ends with '.'", s)
			}
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("binding path %q has an unterminated index", s)
			}
			idx, err := strconv.Atoi(rest[1:end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("binding path %q has an invalid index %q", s, rest[1:end])
			}
			p = append(p, Step{Index: idx, IsIndex: true})
			rest = rest[end+1:]
		default:
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			p = append(p, Step{Field: rest[:end]})
			rest = rest[end:]
		}
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("empty binding path")
	}
	return p, nil
}

// MustParsePath is ParsePath for paths known valid at compile time.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}
