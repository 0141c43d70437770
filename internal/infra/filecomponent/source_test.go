package filecomponent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/component"
	"plasma/internal/infra/registry"
)

const greetingPrompt = `---
name: greeting
description: Greets someone by name
arguments:
  - name: person
    description: Who to greet
    required: true
  - name: times
    type: Integer
---
Say hello to {{ person }} {{times}} times.
`

const changelogResource = `---
description: The project changelog
uri: docs://changelog
---
# Changelog
`

const noteResource = `---
name: note
uri: notes://{id}
arguments:
  - name: id
    required: true
---
Note {{id}}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newProject(t *testing.T) (string, *Source) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "prompts", "greeting.md"), greetingPrompt)
	writeFile(t, filepath.Join(root, "app", "resources", "release-notes.md"), changelogResource)
	writeFile(t, filepath.Join(root, "app", "resources", "note.md"), noteResource)
	writeFile(t, filepath.Join(root, "app", "resources", "ignored.txt"), "nope")
	writeFile(t, filepath.Join(root, "app", "prompts", "broken.md"), "---\nname: [oops\n---\nbody")
	return root, NewSource(root, zap.NewNop())
}

func TestSource_Registrations(t *testing.T) {
	_, source := newProject(t)

	regs, err := source.Registrations(context.Background())
	require.NoError(t, err)
	require.Len(t, regs, 3)

	prompt := regs[0].Declaration
	require.Equal(t, domain.KindPrompt, prompt.Kind)
	require.Equal(t, "greeting", prompt.QualifiedName)
	require.Equal(t, "Greets someone by name", prompt.ExplicitDescription)
	require.Equal(t, []domain.ParameterDescriptor{
		{Name: "person", Type: domain.TypeString, Description: "Who to greet", Required: true},
		{Name: "times", Type: domain.TypeInteger},
	}, prompt.Parameters)
	require.NotEmpty(t, prompt.Identity.Version)

	note := regs[1].Declaration
	require.Equal(t, "note", note.QualifiedName)
	require.Equal(t, "notes://{id}", note.URI)
	require.Equal(t, defaultResourceMIME, note.MIMEType)

	changelog := regs[2].Declaration
	require.Equal(t, "release_notes", changelog.QualifiedName)
	require.Equal(t, "docs://changelog", changelog.URI)
}

func TestSource_PromptHandlerRendersArguments(t *testing.T) {
	_, source := newProject(t)
	regs, err := source.Registrations(context.Background())
	require.NoError(t, err)

	result, _, err := component.Invoke(context.Background(), regs[0].Declaration, regs[0].Handler, map[string]any{
		"person": "Ada",
		"times":  "3",
	})
	require.NoError(t, err)
	require.Equal(t, []domain.PromptMessage{{Role: domain.RoleUser, Content: "Say hello to Ada 3 times."}}, result)

	_, _, err = component.Invoke(context.Background(), regs[0].Declaration, regs[0].Handler, map[string]any{})
	require.EqualError(t, err, "Missing required parameter: person")
}

func TestSource_VersionChangesWithContent(t *testing.T) {
	root, source := newProject(t)
	before, err := source.Registrations(context.Background())
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "app", "resources", "note.md"), noteResource+"\nmore\n")
	after, err := source.Registrations(context.Background())
	require.NoError(t, err)

	require.Equal(t, before[1].Declaration.Identity.Path, after[1].Declaration.Identity.Path)
	require.NotEqual(t, before[1].Declaration.Identity.Version, after[1].Declaration.Identity.Version)
	require.Equal(t, before[0].Declaration.Identity, after[0].Declaration.Identity)
}

func TestSource_MissingDirsAreEmpty(t *testing.T) {
	source := NewSource(t.TempDir(), zap.NewNop())
	regs, err := source.Registrations(context.Background())
	require.NoError(t, err)
	require.Empty(t, regs)
	require.Len(t, source.Dirs(), 2)
}

func TestSource_FeedsRegistryScan(t *testing.T) {
	_, source := newProject(t)
	snapshot, err := registry.NewScanner(nil, nil, zap.NewNop()).Scan(context.Background(), source)
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.Count(domain.KindPrompt))
	require.Equal(t, 2, snapshot.Count(domain.KindResource))

	entry, ok := snapshot.Lookup(domain.KindResource, "release_notes")
	require.True(t, ok)
	require.Equal(t, "The project changelog", entry.Metadata.Description)
}

func TestRender(t *testing.T) {
	params := domain.NewParams([]string{"name", "count"}, map[string]any{"name": "Ada", "count": int64(2)})
	require.Equal(t, "Ada has 2 and  left", Render("{{name}} has {{ count }} and {{missing}} left", params))
	require.Equal(t, "no placeholders", Render("no placeholders", params))
}

func TestIsComponentFile(t *testing.T) {
	require.True(t, IsComponentFile("/x/app/prompts/a.md"))
	require.True(t, IsComponentFile("B.MD"))
	require.False(t, IsComponentFile(".a.md"))
	require.False(t, IsComponentFile("a.md.swp"))
}
