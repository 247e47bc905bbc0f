// Catalog loading: a YAML description of every asset, validated and
// resolved into a Registry.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/world"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type amountDoc struct {
	Resource string `yaml:"resource" validate:"required"`
	Amount   int    `yaml:"amount" validate:"min=0"`
}

type resourceDoc struct {
	Name      string `yaml:"name" validate:"required"`
	FoodValue int    `yaml:"food_value" validate:"min=0"`
}

type buildingDoc struct {
	Name               string      `yaml:"name" validate:"required"`
	Description        string      `yaml:"description"`
	PopulationCapacity int         `yaml:"population_capacity" validate:"min=0"`
	HoursToConstruct   float64     `yaml:"hours_to_construct" validate:"min=0"`
	Requirements       []amountDoc `yaml:"requirements" validate:"dive"`
	StorageCapacity    []amountDoc `yaml:"storage_capacity" validate:"dive"`
	Special            string      `yaml:"special" validate:"omitempty,oneof=none marketplace"`
	Crafts             []string    `yaml:"crafts"`
	Ground             []string    `yaml:"ground" validate:"required,min=1"`
}

type wellDoc struct {
	Resource             string  `yaml:"resource" validate:"required"`
	MinutesPerBunch      float64 `yaml:"minutes_per_bunch" validate:"gt=0"`
	BunchSize            int     `yaml:"bunch_size" validate:"min=1"`
	MinutesPerBunchRegen float64 `yaml:"minutes_per_bunch_regen" validate:"min=0"`
	InitialBunches       int     `yaml:"initial_bunches" validate:"min=1"`
}

type rangeDoc struct {
	Min float64 `yaml:"min" validate:"gte=-1,lte=1"`
	Max float64 `yaml:"max" validate:"gte=-1,lte=1,gtefield=Min"`
}

type siteDoc struct {
	Name                string    `yaml:"name" validate:"required"`
	ResourceDescription string    `yaml:"resource_description"`
	Wells               []wellDoc `yaml:"wells" validate:"required,min=1,dive"`
	Elevation           *rangeDoc `yaml:"elevation"`
	Temperature         *rangeDoc `yaml:"temperature"`
	Humidity            *rangeDoc `yaml:"humidity"`
	Rarity              float64   `yaml:"rarity" validate:"gte=0,lte=1"`
	Ground              []string  `yaml:"ground" validate:"required,min=1"`
}

type recipeDoc struct {
	Name       string      `yaml:"name" validate:"required"`
	Inputs     []amountDoc `yaml:"inputs" validate:"dive"`
	Outputs    []amountDoc `yaml:"outputs" validate:"required,min=1,dive"`
	Minutes    float64     `yaml:"minutes" validate:"gt=0"`
	MaxWorkers int         `yaml:"max_workers" validate:"min=1"`
	Product    string      `yaml:"product"`
	Process    string      `yaml:"process"`
}

type poolDoc struct {
	Capacity int `yaml:"capacity" validate:"min=0"`
	Amount   int `yaml:"amount" validate:"min=0,ltefield=Capacity"`
}

type prebuiltDoc struct {
	Building string `yaml:"building" validate:"required"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
}

type startDoc struct {
	StorageCapacity int           `yaml:"storage_capacity" validate:"min=0"`
	Resources       []amountDoc   `yaml:"resources" validate:"dive"`
	Homeless        poolDoc       `yaml:"homeless"`
	Unemployed      poolDoc       `yaml:"unemployed"`
	Buildings       []prebuiltDoc `yaml:"buildings" validate:"dive"`
	Silver          int           `yaml:"silver" validate:"min=0"`
}

type mandateDoc struct {
	Requirements []amountDoc `yaml:"requirements" validate:"required,min=1,dive"`
	Rewards      []amountDoc `yaml:"rewards" validate:"dive"`
	DueMinutes   uint64      `yaml:"due_minutes" validate:"gt=0"`
}

type wantDoc struct {
	Resource string `yaml:"resource" validate:"required"`
	Want     int    `yaml:"want" validate:"gt=0"`
	Site     string `yaml:"site" validate:"required"`
}

type aiDoc struct {
	Wants         []wantDoc `yaml:"wants" validate:"dive"`
	Housing       string    `yaml:"housing"`
	Storage       string    `yaml:"storage"`
	FoodDays      float64   `yaml:"food_days" validate:"min=0"`
	NatureDensity float64   `yaml:"nature_density" validate:"gte=0,lte=1"`
}

type upkeepDoc struct {
	FoodPerPersonDay   float64 `yaml:"food_per_person_day" validate:"min=0"`
	GrowthPerHousedDay float64 `yaml:"growth_per_housed_day" validate:"min=0"`
}

type fishingDoc struct {
	Resource        string  `yaml:"resource" validate:"required"`
	MinutesPerCatch float64 `yaml:"minutes_per_catch" validate:"gt=0"`
	Yield           int     `yaml:"yield" validate:"min=1"`
	MaxWorkers      int     `yaml:"max_workers" validate:"min=1"`
}

type catalogDoc struct {
	Resources []resourceDoc `yaml:"resources" validate:"required,min=1,dive"`
	Recipes   []recipeDoc   `yaml:"recipes" validate:"dive"`
	Buildings []buildingDoc `yaml:"buildings" validate:"dive"`
	Sites     []siteDoc     `yaml:"resource_sites" validate:"dive"`
	Start     startDoc      `yaml:"start"`
	Mandates  []mandateDoc  `yaml:"mandates" validate:"dive"`
	AI        aiDoc         `yaml:"ai"`
	Upkeep    upkeepDoc     `yaml:"upkeep"`
	Fishing   *fishingDoc   `yaml:"fishing"`
}

// Default returns a registry built from the embedded catalog.
func Default() (*Registry, error) {
	r, err := Load(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return r, nil
}

// LoadFile reads and loads a catalog file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	r, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Load parses, validates and resolves a YAML catalog.
func Load(data []byte) (*Registry, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validateDoc(&doc); err != nil {
		return nil, err
	}
	return resolve(&doc)
}

func validateDoc(doc *catalogDoc) error {
	err := validator.New().Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, fmt.Sprintf("field '%s' failed validation: %s (value: '%v')",
			e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// resolver turns ids into registered pointers, keeping the first failure.
type resolver struct {
	reg *Registry
	err error
}

func (rs *resolver) fail(format string, args ...any) {
	if rs.err == nil {
		rs.err = fmt.Errorf(format, args...)
	}
}

func (rs *resolver) resource(id, where string) *economy.ResourceType {
	t, ok := rs.reg.LookupResource(id)
	if !ok {
		rs.fail("%s: unknown resource %q", where, id)
	}
	return t
}

func (rs *resolver) bundles(docs []amountDoc, where string) []economy.Bundle {
	out := make([]economy.Bundle, 0, len(docs))
	for _, d := range docs {
		out = append(out, economy.Bundle{Type: rs.resource(d.Resource, where), Amount: d.Amount})
	}
	return out
}

func (rs *resolver) building(id, where string) *BuildingType {
	if id == "" {
		return nil
	}
	b, ok := rs.reg.LookupBuilding(id)
	if !ok {
		rs.fail("%s: unknown building %q", where, id)
	}
	return b
}

func (rs *resolver) ground(names []string, where string) world.GroundTile {
	mask, ok := world.ParseGroundMask(names)
	if !ok {
		rs.fail("%s: unknown ground in %v", where, names)
	}
	return mask
}

func toRange(d *rangeDoc) Range {
	if d == nil {
		return Range{Min: -1, Max: 1}
	}
	return Range{Min: d.Min, Max: d.Max}
}

func resolve(doc *catalogDoc) (*Registry, error) {
	rs := &resolver{reg: New()}
	seen := make(map[string]bool)
	unique := func(kind, name string) bool {
		key := kind + ":" + ToSnakeCase(name)
		if seen[key] {
			rs.fail("duplicate %s %q", kind, name)
			return false
		}
		seen[key] = true
		return true
	}

	for _, d := range doc.Resources {
		if unique("resource", d.Name) {
			rs.reg.RegisterResource(&economy.ResourceType{Name: d.Name, FoodValue: d.FoodValue})
		}
	}

	for _, d := range doc.Recipes {
		where := "recipe " + d.Name
		if !unique("recipe", d.Name) {
			continue
		}
		rs.reg.RegisterRecipe(&CraftRecipe{
			Name:       d.Name,
			Inputs:     rs.bundles(d.Inputs, where),
			Outputs:    rs.bundles(d.Outputs, where),
			Minutes:    d.Minutes,
			MaxWorkers: d.MaxWorkers,
			Product:    d.Product,
			Process:    d.Process,
		})
	}

	for _, d := range doc.Buildings {
		where := "building " + d.Name
		if !unique("building", d.Name) {
			continue
		}
		b := &BuildingType{
			Name:               d.Name,
			Description:        d.Description,
			PopulationCapacity: d.PopulationCapacity,
			HoursToConstruct:   d.HoursToConstruct,
			Requirements:       rs.bundles(d.Requirements, where),
			StorageCapacity:    rs.bundles(d.StorageCapacity, where),
			AllowedGround:      rs.ground(d.Ground, where),
		}
		if d.Special == "marketplace" {
			b.Special = SpecialMarketplace
		}
		for _, id := range d.Crafts {
			c, ok := rs.reg.LookupRecipe(id)
			if !ok {
				rs.fail("%s: unknown recipe %q", where, id)
				continue
			}
			b.Crafts = append(b.Crafts, c)
		}
		rs.reg.RegisterBuilding(b)
	}

	for _, d := range doc.Sites {
		where := "resource site " + d.Name
		if !unique("resource site", d.Name) {
			continue
		}
		s := &ResourceSiteType{
			Name:                d.Name,
			ResourceDescription: d.ResourceDescription,
			Generation: SiteGeneration{
				Elevation:   toRange(d.Elevation),
				Temperature: toRange(d.Temperature),
				Humidity:    toRange(d.Humidity),
				Rarity:      d.Rarity,
			},
			AllowedGround: rs.ground(d.Ground, where),
		}
		for _, w := range d.Wells {
			s.Wells = append(s.Wells, WellDef{
				Resource:             rs.resource(w.Resource, where),
				MinutesPerBunch:      w.MinutesPerBunch,
				BunchSize:            w.BunchSize,
				MinutesPerBunchRegen: w.MinutesPerBunchRegen,
				InitialBunches:       w.InitialBunches,
			})
		}
		rs.reg.RegisterResourceSite(s)
	}

	rs.reg.Start = StartState{
		StorageCapacity: doc.Start.StorageCapacity,
		Resources:       rs.bundles(doc.Start.Resources, "start"),
		Homeless:        PoolDef(doc.Start.Homeless),
		Unemployed:      PoolDef(doc.Start.Unemployed),
		Silver:          doc.Start.Silver,
	}
	for _, p := range doc.Start.Buildings {
		rs.reg.Start.Buildings = append(rs.reg.Start.Buildings, PrebuiltDef{
			Building: rs.building(p.Building, "start"),
			Position: world.V(p.X, p.Y),
		})
	}

	for i, m := range doc.Mandates {
		where := fmt.Sprintf("mandate %d", i)
		rs.reg.Mandates = append(rs.reg.Mandates, MandateDef{
			Requirements: rs.bundles(m.Requirements, where),
			Rewards:      rs.bundles(m.Rewards, where),
			DueMinutes:   clock.TimeT(m.DueMinutes),
		})
	}

	rs.reg.AI = AIProfile{
		Housing:       rs.building(doc.AI.Housing, "ai"),
		Storage:       rs.building(doc.AI.Storage, "ai"),
		FoodDays:      doc.AI.FoodDays,
		NatureDensity: doc.AI.NatureDensity,
	}
	for _, w := range doc.AI.Wants {
		site, ok := rs.reg.LookupResourceSite(w.Site)
		if !ok {
			rs.fail("ai: unknown resource site %q", w.Site)
		}
		rs.reg.AI.Wants = append(rs.reg.AI.Wants, ResourceWantDef{
			Resource: rs.resource(w.Resource, "ai"),
			Want:     w.Want,
			Site:     site,
		})
	}

	rs.reg.Upkeep = UpkeepDef(doc.Upkeep)

	if f := doc.Fishing; f != nil {
		rs.reg.Fishing = &FishingDef{
			Resource:        rs.resource(f.Resource, "fishing"),
			MinutesPerCatch: f.MinutesPerCatch,
			Yield:           f.Yield,
			MaxWorkers:      f.MaxWorkers,
		}
	}

	if rs.err != nil {
		return nil, rs.err
	}
	return rs.reg, nil
}
