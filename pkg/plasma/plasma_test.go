package plasma

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/registry"
	"plasma/internal/infra/storage"
)

// Adds two numbers.
type SumTool struct {
	Base
}

func (t *SumTool) Call(context.Context) (any, error) {
	return t.Int("a") + t.Int("b"), nil
}

type HTTPFetchTool struct {
	Base
}

func (t *HTTPFetchTool) Call(context.Context) (any, error) {
	return t.String("url"), nil
}

type WelcomePrompt struct {
	Base
}

func (p *WelcomePrompt) Messages(context.Context) ([]Message, error) {
	return []Message{UserMessage("Welcome " + p.String("name"))}, nil
}

type NoteResource struct {
	Base
}

func (r *NoteResource) Read(context.Context) (any, error) {
	return "note " + r.String("id"), nil
}

func init() {
	RegisterTool[SumTool](Declare().
		Param("a", Integer, Required()).
		Param("b", Integer, Required()))
	RegisterTool[HTTPFetchTool](Declare().Param("url", String, Required()))
	RegisterPrompt[WelcomePrompt](Declare().Name("welcome_user").Param("name", String))
	RegisterResource[NoteResource](Declare().URI("notes://{id}").Param("id", String, Required()))
	RegisterResource[NoteResource](Declare().Describe("registered twice"))
}

func registered(t *testing.T, kind domain.Kind, name string) registry.Registration {
	t.Helper()
	regs, err := registry.Default.Registrations(context.Background())
	require.NoError(t, err)
	for _, reg := range regs {
		if reg.Declaration.Kind == kind && reg.Declaration.QualifiedName == name {
			return reg
		}
	}
	t.Fatalf("%s %s not registered", kind, name)
	return registry.Registration{}
}

func TestRegister_DerivesNamesAndRecordsSource(t *testing.T) {
	sum := registered(t, domain.KindTool, "sum")
	assert.Equal(t, reflect.TypeFor[SumTool](), sum.Declaration.Identity.Type)
	assert.Equal(t, "plasma_test.go", filepath.Base(sum.Declaration.SourceLocation))

	registered(t, domain.KindTool, "http_fetch")
	registered(t, domain.KindPrompt, "welcome_user")

	note := registered(t, domain.KindResource, "note")
	assert.Equal(t, "notes://{id}", note.Declaration.URI)
	assert.Empty(t, note.Declaration.ExplicitDescription, "second registration must not replace the first")
}

func TestRegister_HandlersBindParams(t *testing.T) {
	ctx := context.Background()
	sum := registered(t, domain.KindTool, "sum")
	params := domain.NewParams([]string{"a", "b"}, map[string]any{"a": int64(40), "b": int64(2)})
	result, err := sum.Handler(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result)

	welcome := registered(t, domain.KindPrompt, "welcome_user")
	result, err = welcome.Handler(ctx, domain.NewParams([]string{"name"}, map[string]any{"name": "Ada"}))
	require.NoError(t, err)
	assert.Equal(t, []Message{{Role: User, Content: "Welcome Ada"}}, result)
}

func TestRegister_DefaultResourceURI(t *testing.T) {
	registrar := registry.NewRegistrar()
	register[NoteResource](registrar, domain.KindResource, Declare(), "note.go", func(context.Context, domain.Params) (any, error) {
		return nil, nil
	})
	regs, err := registrar.Registrations(context.Background())
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "plasma://resources/note", regs[0].Declaration.URI)
	assert.Equal(t, "note.go", regs[0].Declaration.SourceLocation)
}

func TestDeclare_ReplacesDuplicateParamInPlace(t *testing.T) {
	decl := Declare().
		Param("first", "String").
		Param("second", Integer, Required()).
		Param("first", Float, Description("  replaced  ")).
		Param("odd", "Widget")

	want := []domain.ParameterDescriptor{
		{Name: "first", Type: domain.TypeFloat, Description: "replaced"},
		{Name: "second", Type: domain.TypeInteger, Required: true},
		{Name: "odd", Type: domain.TypeTag("widget")},
	}
	if diff := cmp.Diff(want, decl.Parameters()); diff != "" {
		t.Fatalf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestBase_ZeroValuesForAbsentParams(t *testing.T) {
	var tool SumTool
	tool.bind(domain.NewParams([]string{"a"}, map[string]any{"a": int64(1)}))
	assert.True(t, tool.Has("a"))
	assert.False(t, tool.Has("b"))
	assert.Equal(t, int64(0), tool.Int("b"))
	assert.Equal(t, "", tool.String("b"))
	assert.Nil(t, tool.Array("b"))
}

func TestVariable(t *testing.T) {
	store, err := storage.Open(context.Background(), storage.Options{Path: filepath.Join(t.TempDir(), "vars.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := storage.WithStore(context.Background(), store)

	visits := DeclareVariable("visits", 5)
	value, err := visits.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, value)

	total, err := visits.Add(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	n, err := visits.Int64(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	require.NoError(t, visits.Set(ctx, "not a number"))
	_, err = visits.Add(ctx, 1)
	require.Error(t, err)

	_, err = visits.Get(context.Background())
	require.ErrorIs(t, err, ErrNoStorage)
}
