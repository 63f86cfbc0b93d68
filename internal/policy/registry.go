package policy

import (
	"fmt"
	"sort"
)

// Registry holds all blocking policy groups.
// This is the compiled-in policy store: changing it requires a rebuild.
type Registry struct {
	policies map[string]AppPolicy
}

// NewRegistry creates a registry with all default policy groups.
func NewRegistry() *Registry {
	r := &Registry{
		policies: make(map[string]AppPolicy),
	}

	r.Register(NewSocialPolicy())
	r.Register(NewVideoPolicy())
	r.Register(NewGamesPolicy())
	r.Register(NewStreamingPolicy())

	return r
}

// NewRegistryWithPolicies creates a registry with custom policies (for testing).
func NewRegistryWithPolicies(policies ...AppPolicy) *Registry {
	r := &Registry{
		policies: make(map[string]AppPolicy),
	}
	for _, p := range policies {
		r.Register(p)
	}
	return r
}

// Register adds a policy to the registry.
func (r *Registry) Register(p AppPolicy) {
	r.policies[p.ID()] = p
}

// Get returns a policy by ID.
func (r *Registry) Get(id string) (AppPolicy, bool) {
	p, ok := r.policies[id]
	return p, ok
}

// GetAll returns all registered policies ordered by ID.
func (r *Registry) GetAll() []AppPolicy {
	result := make([]AppPolicy, 0, len(r.policies))
	for _, p := range r.policies {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// List returns all policy IDs, sorted.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GroupOf returns the policy group that blocks appID.
func (r *Registry) GroupOf(appID string) (AppPolicy, error) {
	for _, p := range r.GetAll() {
		for _, a := range p.Apps() {
			if a == appID {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("no policy blocks app: %s", appID)
}

// Set flattens the registry into an immutable Set using the default
// browser and always-allowed lists.
func (r *Registry) Set() *Set {
	var apps, patterns []string
	for _, p := range r.GetAll() {
		apps = append(apps, p.Apps()...)
		patterns = append(patterns, p.AddressPatterns()...)
	}
	return NewSet(apps, patterns, DefaultBrowsers, DefaultAlwaysAllowed)
}
