package repository

import (
	"slices"
	"strings"

	"github.com/marmos91/dittocmis/pkg/cmis"
)

// mandatoryProperties are emitted whatever the filter asks for.
var mandatoryProperties = []string{
	cmis.PropObjectID,
	cmis.PropObjectTypeID,
	cmis.PropBaseTypeID,
}

// Filter is the working set of a property filter.
//
// An unrestricted filter lets every property through. A restricted filter
// holds the requested query names plus the mandatory ones; Emit removes a
// name once it has been let through, so each requested property is emitted
// at most once. Copy the filter before projecting another object.
type Filter struct {
	all     bool
	pending map[string]struct{}
}

// ParseFilter parses a comma-separated list of query names. An empty string
// or a "*" token yields an unrestricted filter.
func ParseFilter(s string) *Filter {
	if strings.TrimSpace(s) == "" {
		return &Filter{all: true}
	}

	f := &Filter{pending: make(map[string]struct{})}
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if token == "*" {
			return &Filter{all: true}
		}
		f.pending[token] = struct{}{}
	}
	for _, name := range mandatoryProperties {
		f.pending[name] = struct{}{}
	}
	return f
}

// Unrestricted reports whether the filter lets everything through.
func (f *Filter) Unrestricted() bool {
	return f.all
}

// Emit reports whether queryName may be emitted and, for a restricted
// filter, consumes it.
func (f *Filter) Emit(queryName string) bool {
	if f.all {
		return true
	}
	if _, ok := f.pending[queryName]; !ok {
		return false
	}
	delete(f.pending, queryName)
	return true
}

// Wants reports whether Emit would accept queryName, without consuming it.
func (f *Filter) Wants(queryName string) bool {
	if f.all {
		return true
	}
	_, ok := f.pending[queryName]
	return ok
}

// WantsPrefix reports whether any pending name starts with prefix.
func (f *Filter) WantsPrefix(prefix string) bool {
	if f.all {
		return true
	}
	for name := range f.pending {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Pending returns the requested names not emitted yet, sorted. It is nil
// for an unrestricted filter.
func (f *Filter) Pending() []string {
	if f.all {
		return nil
	}
	out := make([]string, 0, len(f.pending))
	for name := range f.pending {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Copy returns an independent working set.
func (f *Filter) Copy() *Filter {
	if f.all {
		return &Filter{all: true}
	}
	c := &Filter{pending: make(map[string]struct{}, len(f.pending))}
	for name := range f.pending {
		c.pending[name] = struct{}{}
	}
	return c
}
