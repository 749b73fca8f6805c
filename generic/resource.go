/*
resource.go - Resource type registration and lookup

PURPOSE:
  Domain packages register the balances they book (cash, reputation) so
  that storage can turn a stored resource id back into the concrete type.

USAGE:
  // In airline/types.go
  func init() {
      generic.RegisterResource(ResourceCash)
      generic.RegisterResource(ResourceReputation)
  }

  // In store/sqlite
  resourceType := generic.GetOrCreateResource("cash")

SEE ALSO:
  - types.go: ResourceType interface definition
  - airline/types.go: Airline resources
*/
package generic

import "sync"

// =============================================================================
// RESOURCE REGISTRY
// =============================================================================

var (
	resourceRegistry = make(map[string]ResourceType)
	registryMu       sync.RWMutex
)

// RegisterResource adds a resource type to the global registry.
// Re-registering an id replaces the previous entry.
func RegisterResource(r ResourceType) {
	registryMu.Lock()
	defer registryMu.Unlock()
	resourceRegistry[r.ResourceID()] = r
}

// LookupResource finds a registered resource type by ID.
// Returns nil if not found.
func LookupResource(id string) ResourceType {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return resourceRegistry[id]
}

// =============================================================================
// STRING RESOURCE - For testing and fallback
// =============================================================================

// StringResource stands in for resource ids that no loaded package registered,
// e.g. rows written by a newer build.
type StringResource struct {
	ID     string
	Domain string
}

func (r StringResource) ResourceID() string     { return r.ID }
func (r StringResource) ResourceDomain() string { return r.Domain }

// NewStringResource creates a StringResource with "unknown" domain.
// This is a fallback for when we have an ID but no registered type.
func NewStringResource(id string) StringResource {
	return StringResource{ID: id, Domain: "unknown"}
}

// GetOrCreateResource looks up a resource type, or creates a StringResource fallback.
// Use this in deserialization when the domain might not be loaded.
func GetOrCreateResource(id string) ResourceType {
	if r := LookupResource(id); r != nil {
		return r
	}
	return NewStringResource(id)
}
