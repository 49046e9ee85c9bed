package types

// FilterState is the pair of filter records describing the current search.
type FilterState struct {
	Basic    BasicFilters    `json:"filters"`
	Advanced AdvancedFilters `json:"advancedFilters"`
}

func NewFilterState() FilterState {
	return FilterState{
		Basic:    NewBasicFilters(),
		Advanced: NewAdvancedFilters(),
	}
}

// DefaultFilterState is used when a session starts without query parameters,
// only properties for sale are shown.
func DefaultFilterState() FilterState {
	s := NewFilterState()
	s.Basic.ContractType = Tokens{ContractSale}
	return s
}

func (s FilterState) Clone() FilterState {
	return FilterState{
		Basic:    s.Basic.Clone(),
		Advanced: s.Advanced.Clone(),
	}
}

func (s FilterState) Equal(o FilterState) bool {
	return s.Basic.Equal(o.Basic) && s.Advanced.Equal(o.Advanced)
}

func (s FilterState) IsEmpty() bool {
	return s.Basic.IsEmpty() && s.Advanced.IsEmpty()
}

// Canonical moves every advanced value that shares a concern with a basic
// filter into the basic field, so each concern has a single representation.
// A non empty advanced value replaces the basic one. It is the url view of the
// state, the pipeline itself applies both fields.
func (s FilterState) Canonical() FilterState {
	ret := s.Clone()
	b, a := &ret.Basic, &ret.Advanced

	if !a.PropertyType.IsEmpty() {
		b.PropertyType, a.PropertyType = a.PropertyType, Tokens{}
	}
	if !a.Location.IsEmpty() {
		b.Location, a.Location = a.Location, Tokens{}
	}
	fold := func(value *string, target *Tokens) {
		if *value != "" {
			*target = MakeTokens(*value)
			*value = ""
		}
	}
	fold(&a.ContractType, &b.ContractType)
	fold(&a.Bedrooms, &b.Bedrooms)
	fold(&a.Bathrooms, &b.Bathrooms)
	fold(&a.Area, &b.AreaMin)
	fold(&a.AreaMax, &b.AreaMax)
	return ret
}

func (s FilterState) WithFilter(key string, values ...string) (FilterState, error) {
	ret := s.Clone()
	err := ret.Basic.Set(key, values...)
	return ret, err
}

// WithAdvanced replaces the advanced record. Shared concerns are kept in both
// records and narrow the result together.
func (s FilterState) WithAdvanced(advanced AdvancedFilters) FilterState {
	ret := s.Clone()
	ret.Advanced = advanced.Clone()
	return ret
}

func (s FilterState) ClearAdvanced() FilterState {
	ret := s.Clone()
	ret.Advanced = NewAdvancedFilters()
	return ret
}
