package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"curricula/internal/domain"
)

//go:embed templates/*.yaml
var embedded embed.FS

// Registry maps discipline names to validated templates. Lookups are
// case-insensitive. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*domain.DisciplineTemplate
}

var _ domain.TemplateRegistry = (*Registry)(nil)

// NewRegistry returns a registry holding the given templates. A later
// template replaces an earlier one with the same discipline.
func NewRegistry(templates ...*domain.DisciplineTemplate) *Registry {
	r := &Registry{templates: make(map[string]*domain.DisciplineTemplate, len(templates))}
	for _, t := range templates {
		r.Register(t)
	}
	return r
}

// DefaultRegistry returns a registry loaded with the templates shipped in
// the binary.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := r.loadFS(embedded, "templates"); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds or replaces the template for t.Discipline.
func (r *Registry) Register(t *domain.DisciplineTemplate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[key(t.Discipline)] = t
}

// LoadDir parses every *.yaml / *.yml file in dir and registers it. Files
// are processed in name order; the first invalid file aborts the load.
func (r *Registry) LoadDir(dir string) error {
	return r.loadFS(os.DirFS(dir), ".")
}

func (r *Registry) loadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read template directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, e.Name())))
		if err != nil {
			return fmt.Errorf("read template %s: %w", e.Name(), err)
		}
		tpl, err := Parse(data)
		if err != nil {
			return fmt.Errorf("template %s: %w", e.Name(), err)
		}
		r.Register(tpl)
	}
	return nil
}

// LoadFile parses a single template file without registering it.
func LoadFile(path string) (*domain.DisciplineTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Parse(data)
}

// Lookup returns the template for discipline. ok is false when the
// discipline is not supported.
func (r *Registry) Lookup(discipline string) (*domain.DisciplineTemplate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[key(discipline)]
	return t, ok
}

// Disciplines returns the registered discipline names in sorted order.
func (r *Registry) Disciplines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t.Discipline)
	}
	sort.Strings(out)
	return out
}

func key(discipline string) string {
	return strings.ToLower(strings.TrimSpace(discipline))
}
