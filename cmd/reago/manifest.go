package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reago-dev/reago/pkg/state"
)

// Manifest is the YAML form of a declaration. It carries names and shapes
// only; getters and handlers live in code, so manifests are checked
// statically and cannot be bound directly.
type Manifest struct {
	Name   string          `yaml:"name"`
	Inputs []ManifestInput `yaml:"inputs"`
	Fields map[string]any  `yaml:"fields"`

	// Derived lists declared derived-value names. An entry with
	// writable: true declares a setter alongside the getter.
	Derived []ManifestDerived `yaml:"derived"`

	// Methods lists declared method names.
	Methods []string `yaml:"methods"`

	Watches []ManifestWatch `yaml:"watches"`
}

// ManifestInput declares one input.
type ManifestInput struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Default  any    `yaml:"default"`
	Required bool   `yaml:"required"`
}

// ManifestDerived declares one derived value.
type ManifestDerived struct {
	Name     string `yaml:"name"`
	Writable bool   `yaml:"writable"`
}

// ManifestWatch declares one watch with a method-name handler.
type ManifestWatch struct {
	Expr    string `yaml:"expr"`
	Handler string `yaml:"handler"`
}

// LoadManifest reads and parses a declaration manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("manifest %s: missing name", path)
	}
	return &m, nil
}

// Declaration converts the manifest to a lintable declaration. Getters,
// setters and method bodies are stubbed: the static checks only look at
// names and shapes.
func (m *Manifest) Declaration() *state.Declaration {
	decl := &state.Declaration{Name: m.Name}

	for _, in := range m.Inputs {
		decl.Inputs = append(decl.Inputs, state.InputSpec{
			Name:     in.Name,
			Type:     parseKind(in.Type),
			Default:  in.Default,
			Required: in.Required,
		})
	}

	if m.Fields != nil {
		decl.Fields = state.Fields(m.Fields)
	}

	stub := func(u *state.Unit) any { return nil }
	for _, d := range m.Derived {
		if d.Writable {
			decl.Derived = append(decl.Derived, state.DerivedWith(d.Name, state.DerivedDef{
				Get: stub,
				Set: func(u *state.Unit, value any) {},
			}))
		} else {
			decl.Derived = append(decl.Derived, state.Derived(d.Name, stub))
		}
	}

	for _, name := range m.Methods {
		decl.Methods = append(decl.Methods, state.MethodSpec{
			Name: name,
			Fn:   func(u *state.Unit, args ...any) any { return nil },
		})
	}

	for _, w := range m.Watches {
		decl.Watches = append(decl.Watches, state.WatchSpec{
			Expr:    w.Expr,
			Handler: w.Handler,
		})
	}

	return decl
}

// parseKind maps a manifest type name to a value kind.
func parseKind(name string) state.Kind {
	switch name {
	case "bool":
		return state.KindBool
	case "int":
		return state.KindInt
	case "float":
		return state.KindFloat
	case "string":
		return state.KindString
	case "map":
		return state.KindMap
	case "slice", "list":
		return state.KindSlice
	case "func":
		return state.KindFunc
	default:
		return state.KindAny
	}
}
