package registry

import (
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/invariant"
)

// table indexes one kind of asset by id and by registration order.
type table[T any] struct {
	kind  string
	byID  map[string]T
	order []T
	ids   []string
}

func newTable[T any](kind string) table[T] {
	return table[T]{kind: kind, byID: make(map[string]T)}
}

func (t *table[T]) register(id string, v T) {
	_, dup := t.byID[id]
	invariant.Require(id != "", "register %s with empty id", t.kind)
	invariant.Require(!dup, "duplicate %s id %q", t.kind, id)
	t.byID[id] = v
	t.order = append(t.order, v)
	t.ids = append(t.ids, id)
}

func (t *table[T]) get(id string) T {
	v, ok := t.byID[id]
	invariant.Require(ok, "unknown %s id %q", t.kind, id)
	return v
}

func (t *table[T]) lookup(id string) (T, bool) {
	v, ok := t.byID[id]
	return v, ok
}

func (t *table[T]) at(i int) T {
	invariant.Require(i >= 0 && i < len(t.order), "%s index %d out of range [0, %d)", t.kind, i, len(t.order))
	return t.order[i]
}

func (t *table[T]) all() []T {
	out := make([]T, len(t.order))
	copy(out, t.order)
	return out
}

// Registry is the lookup service for all asset types. Build one per game
// (or per test) and pass it to whatever needs it.
type Registry struct {
	resources table[*economy.ResourceType]
	buildings table[*BuildingType]
	sites     table[*ResourceSiteType]
	recipes   table[*CraftRecipe]

	Start    StartState
	Mandates []MandateDef
	AI       AIProfile
	Upkeep   UpkeepDef
	Fishing  *FishingDef
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		resources: newTable[*economy.ResourceType]("resource"),
		buildings: newTable[*BuildingType]("building"),
		sites:     newTable[*ResourceSiteType]("resource site"),
		recipes:   newTable[*CraftRecipe]("recipe"),
	}
}

// RegisterResource adds a resource type, deriving its id from its name
// when unset.
func (r *Registry) RegisterResource(t *economy.ResourceType) *economy.ResourceType {
	if t.ID == "" {
		t.ID = ToSnakeCase(t.Name)
	}
	r.resources.register(t.ID, t)
	return t
}

// RegisterBuilding adds a building type.
func (r *Registry) RegisterBuilding(b *BuildingType) *BuildingType {
	if b.ID == "" {
		b.ID = ToSnakeCase(b.Name)
	}
	r.buildings.register(b.ID, b)
	return b
}

// RegisterResourceSite adds a resource site type.
func (r *Registry) RegisterResourceSite(s *ResourceSiteType) *ResourceSiteType {
	if s.ID == "" {
		s.ID = ToSnakeCase(s.Name)
	}
	r.sites.register(s.ID, s)
	return s
}

// RegisterRecipe adds a crafting recipe.
func (r *Registry) RegisterRecipe(c *CraftRecipe) *CraftRecipe {
	if c.ID == "" {
		c.ID = ToSnakeCase(c.Name)
	}
	r.recipes.register(c.ID, c)
	return c
}

// Resource returns the resource type with the given id. Unknown ids are a
// contract violation.
func (r *Registry) Resource(id string) *economy.ResourceType { return r.resources.get(id) }

// ResourceAt returns the i-th registered resource type.
func (r *Registry) ResourceAt(i int) *economy.ResourceType { return r.resources.at(i) }

// Resources returns every resource type in registration order.
func (r *Registry) Resources() []*economy.ResourceType { return r.resources.all() }

// LookupResource is Resource for untrusted ids.
func (r *Registry) LookupResource(id string) (*economy.ResourceType, bool) {
	return r.resources.lookup(id)
}

// Building returns the building type with the given id.
func (r *Registry) Building(id string) *BuildingType { return r.buildings.get(id) }

// BuildingAt returns the i-th registered building type.
func (r *Registry) BuildingAt(i int) *BuildingType { return r.buildings.at(i) }

// Buildings returns every building type in registration order.
func (r *Registry) Buildings() []*BuildingType { return r.buildings.all() }

// LookupBuilding is Building for untrusted ids.
func (r *Registry) LookupBuilding(id string) (*BuildingType, bool) { return r.buildings.lookup(id) }

// ResourceSite returns the resource site type with the given id.
func (r *Registry) ResourceSite(id string) *ResourceSiteType { return r.sites.get(id) }

// ResourceSiteAt returns the i-th registered resource site type.
func (r *Registry) ResourceSiteAt(i int) *ResourceSiteType { return r.sites.at(i) }

// ResourceSites returns every resource site type in registration order.
func (r *Registry) ResourceSites() []*ResourceSiteType { return r.sites.all() }

// LookupResourceSite is ResourceSite for untrusted ids.
func (r *Registry) LookupResourceSite(id string) (*ResourceSiteType, bool) {
	return r.sites.lookup(id)
}

// Recipe returns the recipe with the given id.
func (r *Registry) Recipe(id string) *CraftRecipe { return r.recipes.get(id) }

// Recipes returns every recipe in registration order.
func (r *Registry) Recipes() []*CraftRecipe { return r.recipes.all() }

// LookupRecipe is Recipe for untrusted ids.
func (r *Registry) LookupRecipe(id string) (*CraftRecipe, bool) { return r.recipes.lookup(id) }

// IDs lists registered ids per kind, in registration order.
func (r *Registry) IDs() map[string][]string {
	return map[string][]string{
		"resource":      append([]string(nil), r.resources.ids...),
		"building":      append([]string(nil), r.buildings.ids...),
		"resource_site": append([]string(nil), r.sites.ids...),
		"recipe":        append([]string(nil), r.recipes.ids...),
	}
}
