package types

import (
	"fmt"
	"time"
)

// TemplateKind selects the built-in behavior a template constructs
type TemplateKind string

const (
	KindStatic TemplateKind = "static" // Content only, empty hooks
	KindToast  TemplateKind = "toast"  // Self-dismissing overlay
	KindScript TemplateKind = "script" // Hooks written in JavaScript
)

// Template is one entry of the UI catalog: a type tag bound to a behavior kind
type Template struct {
	Tag         string            `json:"tag" yaml:"tag" toml:"tag"`
	Kind        TemplateKind      `json:"kind" yaml:"kind" toml:"kind"`
	Title       string            `json:"title,omitempty" yaml:"title" toml:"title"`
	Body        string            `json:"body,omitempty" yaml:"body" toml:"body"`
	Description string            `json:"description,omitempty" yaml:"description" toml:"description"`
	Layers      []Layer           `json:"layers,omitempty" yaml:"layers" toml:"layers"` // Empty allows every layer
	TTL         string            `json:"ttl,omitempty" yaml:"ttl" toml:"ttl"`          // Toast lifetime, e.g. "3s"
	Script      string            `json:"script,omitempty" yaml:"script" toml:"script"`
	Meta        map[string]string `json:"meta,omitempty" yaml:"meta" toml:"meta"`

	// Filled in by the registry
	Source    string    `json:"source,omitempty" yaml:"-" toml:"-"`
	Revision  string    `json:"revision,omitempty" yaml:"-" toml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-" toml:"-"`
}

// Allows reports whether the template may be opened on layer l
func (t *Template) Allows(l Layer) bool {
	if len(t.Layers) == 0 {
		return true
	}
	for _, allowed := range t.Layers {
		if allowed == l {
			return true
		}
	}
	return false
}

// Lifetime parses TTL. Zero means no automatic dismissal.
func (t *Template) Lifetime() (time.Duration, error) {
	if t.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(t.TTL)
	if err != nil {
		return 0, fmt.Errorf("template %s: invalid ttl %q: %w", t.Tag, t.TTL, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("template %s: negative ttl %q", t.Tag, t.TTL)
	}
	return d, nil
}

// TemplateMetadata is the lightweight listing form of a template
type TemplateMetadata struct {
	Tag         string       `json:"tag"`
	Kind        TemplateKind `json:"kind"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Layers      []Layer      `json:"layers,omitempty"`
	Source      string       `json:"source,omitempty"`
}

// ToMetadata converts a Template to its listing form
func (t *Template) ToMetadata() TemplateMetadata {
	return TemplateMetadata{
		Tag:         t.Tag,
		Kind:        t.Kind,
		Title:       t.Title,
		Description: t.Description,
		Layers:      t.Layers,
		Source:      t.Source,
	}
}

// RegistryStats contains template registry statistics
type RegistryStats struct {
	TotalTemplates int                  `json:"total_templates"`
	Kinds          map[TemplateKind]int `json:"kinds"`
	LastUpdated    *time.Time           `json:"last_updated,omitempty"`
}
