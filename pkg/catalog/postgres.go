package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/matst80/casa-finder/pkg/types"
)

type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const selectProperties = `
SELECT id, title, address, city, region, property_type, contract_type,
       bedrooms, bathrooms, area, price, lat, lng,
       COALESCE(images, '{}') AS images, COALESCE(badges, '{}') AS badges,
       featured, is_new, price_hidden
FROM properties
ORDER BY position, id`

type propertyRow struct {
	Id           string   `db:"id"`
	Title        string   `db:"title"`
	Address      string   `db:"address"`
	City         string   `db:"city"`
	Region       string   `db:"region"`
	PropertyType string   `db:"property_type"`
	ContractType string   `db:"contract_type"`
	Bedrooms     int      `db:"bedrooms"`
	Bathrooms    int      `db:"bathrooms"`
	Area         float64  `db:"area"`
	Price        float64  `db:"price"`
	Lat          float64  `db:"lat"`
	Lng          float64  `db:"lng"`
	Images       []string `db:"images"`
	Badges       []string `db:"badges"`
	Featured     bool     `db:"featured"`
	IsNew        bool     `db:"is_new"`
	PriceHidden  bool     `db:"price_hidden"`
}

func (r propertyRow) toProperty() types.Property {
	return types.Property{
		Id:           types.PropertyId(r.Id),
		Title:        r.Title,
		Address:      r.Address,
		City:         r.City,
		Region:       r.Region,
		PropertyType: r.PropertyType,
		ContractType: r.ContractType,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Area:         r.Area,
		Price:        r.Price,
		Coordinates:  types.Coordinates{Lat: r.Lat, Lng: r.Lng},
		Images:       r.Images,
		Badges:       r.Badges,
		Featured:     r.Featured,
		IsNew:        r.IsNew,
		PriceHidden:  r.PriceHidden,
	}
}

// LoadPostgres reads the whole properties table once, the catalog is not
// refreshed afterwards.
func LoadPostgres(ctx context.Context, db Querier, logger *slog.Logger) (*Catalog, error) {
	rows, err := db.Query(ctx, selectProperties)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[propertyRow])
	if err != nil {
		return nil, fmt.Errorf("scan properties: %w", err)
	}
	items := make([]types.Property, len(records))
	for i, r := range records {
		items[i] = r.toProperty()
	}
	c, err := New(items)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded from postgres", "properties", c.Len())
	return c, nil
}
