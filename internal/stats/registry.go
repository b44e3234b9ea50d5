package stats

import "heapdb/internal/dberrors"

// Registry is the process-wide (but explicitly injected, per spec's
// "model as explicit injected handles, not true globals") name → TableStats
// directory that ComputeStatistics populates.
type Registry struct {
	byName map[string]*TableStats
}

// NewRegistry wraps a name → TableStats map, typically the result of
// ComputeStatistics, in a Registry.
func NewRegistry(byName map[string]*TableStats) *Registry {
	if byName == nil {
		byName = make(map[string]*TableStats)
	}
	return &Registry{byName: byName}
}

// Lookup returns the TableStats registered under name.
func (r *Registry) Lookup(name string) (*TableStats, error) {
	ts, ok := r.byName[name]
	if !ok {
		return nil, dberrors.New(dberrors.InvalidPage, "stats: no table named %q", name)
	}
	return ts, nil
}

// Set registers (or replaces) the TableStats for name.
func (r *Registry) Set(name string, ts *TableStats) {
	r.byName[name] = ts
}

// Names returns every registered table name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}
