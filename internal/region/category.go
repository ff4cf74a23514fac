package region

import (
	"fmt"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/imaging"
)

// Category names a class of store as it is colored on the floor plan.
// Valid values are enumerated by a Catalog.
type Category string

// CategoryInfo describes one category in a Catalog.
type CategoryInfo struct {
	Name  Category
	Label string             // English display label
	Color imaging.RGB        // display color
	Range imaging.ColorRange // membership range on the plan raster
}

// Catalog is the closed set of categories for one floor plan.
type Catalog struct {
	infos []CategoryInfo
	index map[Category]int
}

// NewCatalog validates and indexes infos. Names must be non-empty and unique,
// and every color range must have lower ≤ upper per channel.
func NewCatalog(infos []CategoryInfo) (*Catalog, error) {
	if len(infos) == 0 {
		return nil, diag.Inputf("catalog", "no categories")
	}
	c := &Catalog{
		infos: make([]CategoryInfo, len(infos)),
		index: make(map[Category]int, len(infos)),
	}
	for i, info := range infos {
		if info.Name == "" {
			return nil, diag.Inputf("catalog", "category %d has no name", i)
		}
		if _, dup := c.index[info.Name]; dup {
			return nil, diag.Inputf("catalog", "duplicate category %q", info.Name)
		}
		if _, err := imaging.NewColorRange(info.Range.Lower, info.Range.Upper); err != nil {
			return nil, fmt.Errorf("category %q: %w", info.Name, err)
		}
		c.infos[i] = info
		c.index[info.Name] = i
	}
	return c, nil
}

// Categories returns the categories in catalog order.
func (c *Catalog) Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), c.infos...)
}

// Lookup finds a category by name.
func (c *Catalog) Lookup(name Category) (CategoryInfo, bool) {
	i, ok := c.index[name]
	if !ok {
		return CategoryInfo{}, false
	}
	return c.infos[i], true
}

// Parse validates a free-form name against the catalog.
func (c *Catalog) Parse(name string) (Category, error) {
	cat := Category(name)
	if _, ok := c.index[cat]; !ok {
		return "", diag.Inputf("category", "unknown category %q", name)
	}
	return cat, nil
}
