package codegen_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattdef/dampen-sub004/examples/todo"
	"github.com/mattdef/dampen-sub004/pkg/codegen"
	"github.com/mattdef/dampen-sub004/pkg/ir"
)

type miniModel struct {
	Items []string
}

func repeatStyleDoc() *ir.Document {
	return &ir.Document{
		Version: "1",
		Root: ir.Node{
			Kind:   ir.KindRepeat,
			Source: ir.Field("items"),
			Kids: []ir.Node{{
				Kind:  ir.KindText,
				Attrs: []ir.Attr{ir.Bound("value", ir.Field("it"))},
				Style: ir.StyleProps{"color": "red"},
			}},
		},
	}
}

// The emitted source is compared byte for byte: the generator's output layout
// is part of its contract, since artifacts are committed to repositories.
func TestGenerateGolden(t *testing.T) {
	art, err := codegen.Generate(repeatStyleDoc(), codegen.Options{
		Package: "app",
		Func:    "BuildApp",
		Model:   &miniModel{},
	})
	require.NoError(t, err)
	require.True(t, art.Valid)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "repeat_style", art.Source)
}

// The committed example artifact must be exactly what the generator produces
// for the example document today.
func TestCommittedExampleIsCurrent(t *testing.T) {
	art, err := codegen.Generate(todo.Doc(), codegen.Options{
		Package: "todo",
		Model:   &todo.Model{},
	})
	require.NoError(t, err)

	committed, err := os.ReadFile(filepath.Join("..", "..", "examples", "todo", "ui_gen.go"))
	require.NoError(t, err)
	assert.Equal(t, string(committed), string(art.Source))
}

func TestGenerateFailsOnUnresolvableBinding(t *testing.T) {
	doc := &ir.Document{
		Version: "1",
		Root: ir.Node{
			Kind:  ir.KindText,
			Attrs: []ir.Attr{ir.Bound("value", ir.Field("nonexistent"))},
		},
	}
	_, err := codegen.Generate(doc, codegen.Options{Package: "app", Model: &miniModel{}})
	require.Error(t, err)

	var rerr *codegen.ResolveError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "nonexistent", rerr.Path.String())
}

func TestGenerateRejectsMapTraversal(t *testing.T) {
	type m struct {
		Tags map[string]string
	}
	doc := &ir.Document{
		Version: "1",
		Root: ir.Node{
			Kind:  ir.KindText,
			Attrs: []ir.Attr{ir.Bound("value", ir.Field("tags", "env"))},
		},
	}
	_, err := codegen.Generate(doc, codegen.Options{Package: "app", Model: &m{}})
	var rerr *codegen.ResolveError
	require.True(t, errors.As(err, &rerr), "map traversal must fail statically, got %v", err)
}

func TestGenerateFailsOnItemOutsideRepeat(t *testing.T) {
	doc := &ir.Document{
		Version: "1",
		Root: ir.Node{
			Kind:  ir.KindText,
			Attrs: []ir.Attr{ir.Bound("value", ir.Field("it", "name"))},
		},
	}
	_, err := codegen.Generate(doc, codegen.Options{Package: "app", Model: &miniModel{}})
	var rerr *codegen.ResolveError
	require.True(t, errors.As(err, &rerr))
	assert.Contains(t, rerr.Reason, "repeat template")
}

func TestGenerateFailsOnNonCollectionRepeat(t *testing.T) {
	type m struct {
		Name string
	}
	doc := &ir.Document{
		Version: "1",
		Root: ir.Node{
			Kind:   ir.KindRepeat,
			Source: ir.Field("name"),
			Kids:   []ir.Node{{Kind: ir.KindText}},
		},
	}
	_, err := codegen.Generate(doc, codegen.Options{Package: "app", Model: &m{}})
	var rerr *codegen.ResolveError
	require.True(t, errors.As(err, &rerr))
	assert.Contains(t, rerr.Reason, "not a collection")
}

func TestGenerateRequiresValidDocument(t *testing.T) {
	doc := &ir.Document{
		Version: "1",
		Root:    ir.Node{Kind: ir.KindRepeat, Source: ir.Field("items")},
	}
	_, err := codegen.Generate(doc, codegen.Options{Package: "app", Model: &miniModel{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document")
}

func TestValidateRejectsCorruptSource(t *testing.T) {
	art := &codegen.Artifact{
		Package: "app",
		Source:  []byte("package app\n\nfunc Broken( {\n"),
	}
	err := codegen.Validate(art)
	require.Error(t, err)
	assert.False(t, art.Valid)

	var verr *codegen.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestWriteFileRefusesUnvalidated(t *testing.T) {
	art := &codegen.Artifact{Package: "app", Source: []byte("package app\n")}
	err := art.WriteFile(filepath.Join(t.TempDir(), "out.go"))
	require.Error(t, err)
}

func TestModelFromJSON(t *testing.T) {
	model, err := codegen.ModelFromJSON([]byte(`{
		"heading": "x",
		"count": 2,
		"show_footer": true,
		"items": [{"title": "a", "done": false}]
	}`))
	require.NoError(t, err)

	// The derived type must satisfy the same bindings the values imply.
	doc := &ir.Document{
		Version: "1",
		Root: ir.Node{
			Kind: ir.KindColumn,
			Kids: []ir.Node{
				{Kind: ir.KindText, Attrs: []ir.Attr{ir.Bound("value", ir.Field("heading"))}},
				{Kind: ir.KindConditional, Source: ir.MustParsePath("show_footer"), Kids: []ir.Node{
					{Kind: ir.KindText, Attrs: []ir.Attr{ir.Bound("value", ir.Field("count"))}},
				}},
				{Kind: ir.KindRepeat, Source: ir.Field("items"), Kids: []ir.Node{
					{Kind: ir.KindText, Attrs: []ir.Attr{ir.Bound("value", ir.Field("it", "title"))}},
				}},
			},
		},
	}
	art, err := codegen.Generate(doc, codegen.Options{
		Package:   "app",
		Model:     model,
		EmitModel: true,
	})
	require.NoError(t, err)
	assert.Contains(t, string(art.Source), "type Model struct")
	assert.Contains(t, string(art.Source), "ShowFooter")
}

func TestModelFromJSONRejectsUnusable(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"not an object", `[1, 2]`},
		{"empty array field", `{"items": []}`},
		{"null field", `{"x": null}`},
		{"syntax error", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codegen.ModelFromJSON([]byte(tc.src))
			assert.Error(t, err)
		})
	}
}
