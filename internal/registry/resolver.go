package registry

import (
	"path/filepath"

	"agentd/internal/common/fsutil"
	"agentd/internal/config"
	"agentd/internal/errs"
	"agentd/pkg/types"
)

// Source tells where a model entry came from.
type Source string

const (
	SourceConfig     Source = "config"
	SourceDiscovered Source = "discovered"
)

// Resolver maps model names to files using configured entries first and
// directory discovery second. Discovery runs on every call so files dropped
// into the models dir are picked up without a restart.
type Resolver struct {
	models map[string]config.ModelEntry
	dir    string
	home   string
}

// NewResolver builds a resolver over the configured models and modelsDir.
// home is used to expand '~' in configured file paths.
func NewResolver(models map[string]config.ModelEntry, modelsDir, home string) *Resolver {
	cp := make(map[string]config.ModelEntry, len(models))
	for k, v := range models {
		cp[k] = v
	}
	return &Resolver{models: cp, dir: modelsDir, home: home}
}

// Dir returns the models directory.
func (r *Resolver) Dir() string { return r.dir }

// Lookup returns the entry for name without checking the file.
func (r *Resolver) Lookup(name string) (config.ModelEntry, Source, error) {
	if e, ok := r.models[name]; ok {
		return e, SourceConfig, nil
	}
	found, err := Discover(r.dir)
	if err != nil {
		return config.ModelEntry{}, "", err
	}
	if e, ok := found[name]; ok {
		return e, SourceDiscovered, nil
	}
	return config.ModelEntry{}, "", errs.InvalidModelPath("model '%s' not found", name)
}

// PathOf returns where entry's file lives.
func (r *Resolver) PathOf(e config.ModelEntry) string {
	f := fsutil.ExpandHomeIn(r.home, e.File)
	if filepath.IsAbs(f) {
		return f
	}
	return filepath.Join(r.dir, f)
}

// Resolve returns the path of the named model, failing with InvalidModelPath
// if the name is unknown or its file does not exist.
func (r *Resolver) Resolve(name string) (string, error) {
	e, _, err := r.Lookup(name)
	if err != nil {
		return "", err
	}
	p := r.PathOf(e)
	if !fsutil.IsRegularFile(p) {
		return "", errs.InvalidModelPath("model file '%s' not found at path: %s", e.File, p)
	}
	return p, nil
}

// Names lists every resolvable-by-name model, configured and discovered, sorted.
func (r *Resolver) Names() ([]string, error) {
	found, err := Discover(r.dir)
	if err != nil {
		return nil, err
	}
	for k, v := range r.models {
		found[k] = v
	}
	return sortedNames(found), nil
}

// Catalog lists configured models, then discovered ones not shadowed by config.
func (r *Resolver) Catalog() ([]types.Model, error) {
	found, err := Discover(r.dir)
	if err != nil {
		return nil, err
	}
	out := make([]types.Model, 0, len(r.models)+len(found))
	for _, name := range sortedNames(r.models) {
		out = append(out, r.describe(name, r.models[name], SourceConfig, "No description"))
	}
	for _, name := range sortedNames(found) {
		if _, ok := r.models[name]; ok {
			continue
		}
		out = append(out, r.describe(name, found[name], SourceDiscovered, "Auto-discovered"))
	}
	return out, nil
}

// Describe returns the catalog entry for a single model name.
func (r *Resolver) Describe(name string) (types.Model, error) {
	e, src, err := r.Lookup(name)
	if err != nil {
		return types.Model{}, err
	}
	fallback := "No description"
	if src == SourceDiscovered {
		fallback = "Auto-discovered"
	}
	return r.describe(name, e, src, fallback), nil
}

func (r *Resolver) describe(name string, e config.ModelEntry, src Source, fallback string) types.Model {
	p := r.PathOf(e)
	m := types.Model{
		Name:        name,
		File:        e.File,
		Path:        p,
		Description: e.DescriptionOr(fallback),
		Source:      string(src),
		Available:   fsutil.IsRegularFile(p),
	}
	if e.ContextSize != nil {
		m.ContextSize = *e.ContextSize
	}
	if m.Available {
		m.SizeBytes = fsutil.FileSize(p)
	}
	return m
}
