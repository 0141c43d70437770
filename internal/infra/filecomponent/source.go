// Package filecomponent loads prompts and resources declared as markdown
// files with YAML frontmatter.
package filecomponent

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/hashutil"
	"plasma/internal/infra/metadata"
	"plasma/internal/infra/registry"
)

const (
	fileExt             = ".md"
	defaultResourceMIME = "text/markdown"
	maxComponentFile    = 1 << 20
)

type argumentMatter struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

type promptMatter struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Role        string           `yaml:"role"`
	Arguments   []argumentMatter `yaml:"arguments"`
}

type resourceMatter struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	URI         string           `yaml:"uri"`
	MIMEType    string           `yaml:"mimeType"`
	Arguments   []argumentMatter `yaml:"arguments"`
}

// Source enumerates file components under <root>/app.
type Source struct {
	root   string
	logger *zap.Logger
}

func NewSource(root string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{root: root, logger: logger.Named("file_components")}
}

func (s *Source) Name() string {
	return "files"
}

// Dirs lists the directories holding file components.
func (s *Source) Dirs() []string {
	return []string{
		filepath.Join(s.root, domain.DefaultAppDir, domain.KindPrompt.Dir()),
		filepath.Join(s.root, domain.DefaultAppDir, domain.KindResource.Dir()),
	}
}

// IsComponentFile reports whether path would be picked up by a scan.
func IsComponentFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), fileExt) && !strings.HasPrefix(filepath.Base(path), ".")
}

// Registrations parses every component file. Files that fail to parse are
// logged and skipped so one broken file does not take the server down.
func (s *Source) Registrations(ctx context.Context) ([]Registration, error) {
	var out []Registration
	for _, kind := range []domain.Kind{domain.KindPrompt, domain.KindResource} {
		dir := filepath.Join(s.root, domain.DefaultAppDir, kind.Dir())
		files, err := listComponentFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			reg, err := s.load(kind, path)
			if err != nil {
				s.logger.Warn("skip file component", zap.String("path", path), zap.Error(err))
				continue
			}
			out = append(out, reg)
		}
	}
	return out, nil
}

// Registration is re-exported so callers of this package need not import the registry.
type Registration = registry.Registration

func listComponentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsComponentFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (s *Source) load(kind domain.Kind, path string) (Registration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Registration{}, err
	}
	if info.Size() > maxComponentFile {
		return Registration{}, fmt.Errorf("file is larger than %d bytes", maxComponentFile)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Registration{}, err
	}

	identity := domain.ComponentIdentity{Path: path, Version: hashutil.ContentHash(content)}
	switch kind {
	case domain.KindPrompt:
		return loadPrompt(path, identity, content)
	case domain.KindResource:
		return loadResource(path, identity, content)
	default:
		return Registration{}, fmt.Errorf("unsupported file component kind %q", kind)
	}
}

func loadPrompt(path string, identity domain.ComponentIdentity, content []byte) (Registration, error) {
	var matter promptMatter
	body, err := frontmatter.Parse(bytes.NewReader(content), &matter)
	if err != nil {
		return Registration{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	params, err := parameters(matter.Arguments)
	if err != nil {
		return Registration{}, err
	}
	role := domain.PromptRole(strings.ToLower(strings.TrimSpace(matter.Role)))
	switch role {
	case "":
		role = domain.RoleUser
	case domain.RoleUser, domain.RoleAssistant:
	default:
		return Registration{}, fmt.Errorf("unsupported prompt role %q", matter.Role)
	}

	tmpl := strings.TrimSpace(string(body))
	decl := domain.ComponentDeclaration{
		Kind:                domain.KindPrompt,
		Identity:            identity,
		QualifiedName:       componentName(matter.Name, path),
		Parameters:          params,
		ExplicitDescription: strings.TrimSpace(matter.Description),
		SourceLocation:      path,
	}
	return Registration{
		Declaration: decl,
		Handler: func(_ context.Context, p domain.Params) (any, error) {
			return []domain.PromptMessage{{Role: role, Content: Render(tmpl, p)}}, nil
		},
	}, nil
}

func loadResource(path string, identity domain.ComponentIdentity, content []byte) (Registration, error) {
	var matter resourceMatter
	body, err := frontmatter.Parse(bytes.NewReader(content), &matter)
	if err != nil {
		return Registration{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	params, err := parameters(matter.Arguments)
	if err != nil {
		return Registration{}, err
	}

	name := componentName(matter.Name, path)
	uri := strings.TrimSpace(matter.URI)
	if uri == "" {
		uri = domain.DefaultResourceURI(name)
	}
	mimeType := strings.TrimSpace(matter.MIMEType)
	if mimeType == "" {
		mimeType = defaultResourceMIME
	}

	tmpl := string(body)
	decl := domain.ComponentDeclaration{
		Kind:                domain.KindResource,
		Identity:            identity,
		QualifiedName:       name,
		Parameters:          params,
		ExplicitDescription: strings.TrimSpace(matter.Description),
		SourceLocation:      path,
		URI:                 uri,
		MIMEType:            mimeType,
	}
	return Registration{
		Declaration: decl,
		Handler: func(_ context.Context, p domain.Params) (any, error) {
			return Render(tmpl, p), nil
		},
	}, nil
}

func parameters(args []argumentMatter) ([]domain.ParameterDescriptor, error) {
	out := make([]domain.ParameterDescriptor, 0, len(args))
	seen := make(map[string]int, len(args))
	for _, arg := range args {
		name := strings.TrimSpace(arg.Name)
		if name == "" {
			return nil, fmt.Errorf("argument name is required")
		}
		tag := domain.NormalizeTypeTag(arg.Type)
		if tag == "" {
			tag = domain.TypeString
		}
		param := domain.ParameterDescriptor{
			Name:        name,
			Type:        tag,
			Description: strings.TrimSpace(arg.Description),
			Required:    arg.Required,
		}
		if idx, ok := seen[name]; ok {
			out[idx] = param
			continue
		}
		seen[name] = len(out)
		out = append(out, param)
	}
	return out, nil
}

func componentName(explicit, path string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return metadata.Underscore(base)
}
