package types

import "github.com/paulmach/orb"

type PropertyId string

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point returns the coordinates in orb order (lng, lat).
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

type Property struct {
	Id           PropertyId  `json:"id"`
	Title        string      `json:"title"`
	Address      string      `json:"address"`
	City         string      `json:"city"`
	Region       string      `json:"region"`
	PropertyType string      `json:"propertyType"`
	ContractType string      `json:"contractType"`
	Bedrooms     int         `json:"bedrooms"`
	Bathrooms    int         `json:"bathrooms"`
	Area         float64     `json:"area"`
	Price        float64     `json:"price"`
	Coordinates  Coordinates `json:"coordinates"`
	Images       []string    `json:"images"`
	Badges       []string    `json:"badges"`
	Featured     bool        `json:"featured"`
	IsNew        bool        `json:"isNew"`
	PriceHidden  bool        `json:"priceHidden"`
}

func (p *Property) GetId() PropertyId {
	return p.Id
}

func (p *Property) HasNegativeValues() bool {
	return p.Bedrooms < 0 || p.Bathrooms < 0 || p.Area < 0 || p.Price < 0
}

// Ids returns the ids of the given properties in order.
func Ids(items []Property) []PropertyId {
	ret := make([]PropertyId, len(items))
	for i := range items {
		ret[i] = items[i].Id
	}
	return ret
}
