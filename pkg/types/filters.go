package types

import (
	"errors"
	"fmt"
)

const (
	ContractSale = "vendita"
	ContractRent = "affitto"
	// ContractBoth disables the contract constraint.
	ContractBoth = "entrambi"
)

var ErrUnknownFilter = errors.New("unknown filter")

type BasicFilters struct {
	Keyword      string `json:"keyword" schema:"search,omitempty"`
	Location     Tokens `json:"location" schema:"location,omitempty"`
	City         Tokens `json:"city" schema:"city,omitempty"`
	PropertyType Tokens `json:"propertyType" schema:"type,omitempty"`
	ContractType Tokens `json:"contractType" schema:"contract,omitempty"`
	Bedrooms     Tokens `json:"bedrooms" schema:"bedrooms,omitempty"`
	Bathrooms    Tokens `json:"bathrooms" schema:"bathrooms,omitempty"`
	AreaMin      Tokens `json:"areaMin" schema:"areaMin,omitempty"`
	AreaMax      Tokens `json:"areaMax" schema:"areaMax,omitempty"`
}

// AdvancedFilters fields sharing a concern with BasicFilters are not mapped to
// query keys, the basic field is the canonical one.
type AdvancedFilters struct {
	PriceMin           string `json:"priceMin" schema:"priceMin,omitempty"`
	PriceMax           string `json:"priceMax" schema:"priceMax,omitempty"`
	Bedrooms           string `json:"bedrooms" schema:"-"`
	Bathrooms          string `json:"bathrooms" schema:"-"`
	Area               string `json:"area" schema:"-"`
	AreaMax            string `json:"areaMax" schema:"-"`
	ContractType       string `json:"contractType" schema:"-"`
	PropertyCondition  string `json:"propertyCondition" schema:"propertyCondition,omitempty"`
	SchoolDistrict     string `json:"schoolDistrict" schema:"schoolDistrict,omitempty"`
	YearMin            string `json:"yearMin" schema:"yearMin,omitempty"`
	YearMax            string `json:"yearMax" schema:"yearMax,omitempty"`
	PropertyType       Tokens `json:"propertyType" schema:"-"`
	Location           Tokens `json:"location" schema:"-"`
	Zones              Tokens `json:"zones" schema:"zones,omitempty"`
	Features           Tokens `json:"features" schema:"features,omitempty"`
	Amenities          Tokens `json:"amenities" schema:"amenities,omitempty"`
	EnergyRating       Tokens `json:"energyRating" schema:"energyRating,omitempty"`
	TransportProximity Tokens `json:"transportProximity" schema:"transportProximity,omitempty"`
}

func NewBasicFilters() BasicFilters {
	return BasicFilters{
		Location:     Tokens{},
		City:         Tokens{},
		PropertyType: Tokens{},
		ContractType: Tokens{},
		Bedrooms:     Tokens{},
		Bathrooms:    Tokens{},
		AreaMin:      Tokens{},
		AreaMax:      Tokens{},
	}
}

func NewAdvancedFilters() AdvancedFilters {
	return AdvancedFilters{
		PropertyType:       Tokens{},
		Location:           Tokens{},
		Zones:              Tokens{},
		Features:           Tokens{},
		Amenities:          Tokens{},
		EnergyRating:       Tokens{},
		TransportProximity: Tokens{},
	}
}

func (b *BasicFilters) tokenFields() map[string]*Tokens {
	return map[string]*Tokens{
		"location":     &b.Location,
		"city":         &b.City,
		"propertyType": &b.PropertyType,
		"contractType": &b.ContractType,
		"bedrooms":     &b.Bedrooms,
		"bathrooms":    &b.Bathrooms,
		"areaMin":      &b.AreaMin,
		"areaMax":      &b.AreaMax,
	}
}

func (a *AdvancedFilters) tokenFields() []*Tokens {
	return []*Tokens{
		&a.PropertyType, &a.Location, &a.Zones, &a.Features,
		&a.Amenities, &a.EnergyRating, &a.TransportProximity,
	}
}

// Normalize replaces nil token sets with empty ones.
func (b *BasicFilters) Normalize() {
	for _, f := range b.tokenFields() {
		*f = f.Clone()
	}
}

func (a *AdvancedFilters) Normalize() {
	for _, f := range a.tokenFields() {
		*f = f.Clone()
	}
}

// Set updates a single basic filter, the keyword takes the first value.
func (b *BasicFilters) Set(key string, values ...string) error {
	if key == "keyword" || key == "search" {
		b.Keyword = ""
		if len(values) > 0 {
			b.Keyword = values[0]
		}
		return nil
	}
	field, ok := b.tokenFields()[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, key)
	}
	*field = MakeTokens(values...)
	return nil
}

func (b BasicFilters) Clone() BasicFilters {
	b.Normalize()
	return b
}

func (a AdvancedFilters) Clone() AdvancedFilters {
	a.Normalize()
	return a
}

func (b BasicFilters) Equal(o BasicFilters) bool {
	return b.Keyword == o.Keyword &&
		b.Location.Equal(o.Location) &&
		b.City.Equal(o.City) &&
		b.PropertyType.Equal(o.PropertyType) &&
		b.ContractType.Equal(o.ContractType) &&
		b.Bedrooms.Equal(o.Bedrooms) &&
		b.Bathrooms.Equal(o.Bathrooms) &&
		b.AreaMin.Equal(o.AreaMin) &&
		b.AreaMax.Equal(o.AreaMax)
}

func (a AdvancedFilters) Equal(o AdvancedFilters) bool {
	return a.PriceMin == o.PriceMin &&
		a.PriceMax == o.PriceMax &&
		a.Bedrooms == o.Bedrooms &&
		a.Bathrooms == o.Bathrooms &&
		a.Area == o.Area &&
		a.AreaMax == o.AreaMax &&
		a.ContractType == o.ContractType &&
		a.PropertyCondition == o.PropertyCondition &&
		a.SchoolDistrict == o.SchoolDistrict &&
		a.YearMin == o.YearMin &&
		a.YearMax == o.YearMax &&
		a.PropertyType.Equal(o.PropertyType) &&
		a.Location.Equal(o.Location) &&
		a.Zones.Equal(o.Zones) &&
		a.Features.Equal(o.Features) &&
		a.Amenities.Equal(o.Amenities) &&
		a.EnergyRating.Equal(o.EnergyRating) &&
		a.TransportProximity.Equal(o.TransportProximity)
}

// ContractDisabled reports whether the contract constraint is switched off.
func (b *BasicFilters) ContractDisabled() bool {
	return b.ContractType.Contains(ContractBoth)
}

func (b *BasicFilters) IsEmpty() bool {
	return b.Clone().Equal(NewBasicFilters())
}

func (a *AdvancedFilters) IsEmpty() bool {
	return a.Clone().Equal(NewAdvancedFilters())
}
