package project

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envLookup resolves one variable; os.LookupEnv in production.
type envLookup func(key string) (string, bool)

type expander struct {
	lookup  envLookup
	missing map[string]struct{}
}

// expandConfigEnv replaces ${VAR} and ${VAR:-fallback} references in string
// scalars and returns the re-encoded document plus the sorted names of
// variables that were unset and had no fallback.
func expandConfigEnv(raw []byte, lookup envLookup) (string, []string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return "", nil, fmt.Errorf("parse config: %w", err)
	}
	if root.Kind == 0 {
		return "", nil, nil
	}

	e := &expander{lookup: lookup, missing: make(map[string]struct{})}
	e.walk(&root)

	expanded, err := yaml.Marshal(&root)
	if err != nil {
		return "", nil, fmt.Errorf("encode expanded config: %w", err)
	}
	return string(expanded), e.missingNames(), nil
}

func (e *expander) walk(node *yaml.Node) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			e.walk(child)
		}
	case yaml.MappingNode:
		// Keys are never expanded.
		for i := 1; i < len(node.Content); i += 2 {
			e.walk(node.Content[i])
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			e.walk(node.Alias)
		}
	case yaml.ScalarNode:
		e.scalar(node)
	}
}

func (e *expander) scalar(node *yaml.Node) {
	if node.Tag != "" && node.Tag != "!!str" {
		return
	}
	if !strings.Contains(node.Value, "$") {
		return
	}

	expanded := os.Expand(node.Value, e.resolve)
	if expanded == node.Value {
		return
	}

	// Quoted scalars stay strings; plain ones are re-typed so
	// `port: ${PORT}` still decodes as a number.
	if node.Style != 0 {
		node.Tag = "!!str"
		node.Value = expanded
		return
	}
	node.Tag, node.Value = retypeScalar(expanded)
}

func (e *expander) resolve(ref string) string {
	key, fallback, hasFallback := strings.Cut(ref, ":-")
	if val, ok := e.lookup(key); ok && (val != "" || !hasFallback) {
		return val
	}
	if hasFallback {
		return fallback
	}
	e.missing[key] = struct{}{}
	return ""
}

func (e *expander) missingNames() []string {
	if len(e.missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.missing))
	for name := range e.missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func retypeScalar(value string) (string, string) {
	if strings.TrimSpace(value) == "" {
		return "!!str", value
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return "!!str", value
	}

	switch v := parsed.(type) {
	case nil:
		return "!!null", "null"
	case bool:
		return "!!bool", strconv.FormatBool(v)
	case int:
		return "!!int", strconv.Itoa(v)
	case float64:
		return "!!float", strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return "!!str", value
	}
}
