package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matst80/casa-finder/pkg/types"
	"github.com/paulmach/orb"
)

var (
	ErrDuplicateId     = errors.New("duplicate property id")
	ErrInvalidProperty = errors.New("invalid property")
)

// Catalog is the immutable set of properties loaded for the lifetime of the
// process. It is safe for concurrent use since nothing mutates it after New.
type Catalog struct {
	items []types.Property
	byId  map[types.PropertyId]int
}

func New(items []types.Property) (*Catalog, error) {
	c := &Catalog{
		items: make([]types.Property, 0, len(items)),
		byId:  make(map[types.PropertyId]int, len(items)),
	}
	for _, item := range items {
		if item.Id == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidProperty)
		}
		if item.HasNegativeValues() {
			return nil, fmt.Errorf("%w: %s has negative values", ErrInvalidProperty, item.Id)
		}
		if _, found := c.byId[item.Id]; found {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateId, item.Id)
		}
		item.Images = slices.Clone(item.Images)
		item.Badges = slices.Clone(item.Badges)
		c.byId[item.Id] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// All returns a copy of the items in catalog order.
func (c *Catalog) All() []types.Property {
	return slices.Clone(c.items)
}

func (c *Catalog) Get(id types.PropertyId) (types.Property, bool) {
	i, ok := c.byId[id]
	if !ok {
		return types.Property{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Has(id types.PropertyId) bool {
	_, ok := c.byId[id]
	return ok
}

// Bounds returns the bounding box of the property coordinates, used by the map view.
func Bounds(items []types.Property) orb.Bound {
	if len(items) == 0 {
		return orb.Bound{}
	}
	points := make(orb.MultiPoint, 0, len(items))
	for i := range items {
		points = append(points, items[i].Coordinates.Point())
	}
	return points.Bound()
}
