package urlstate

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/gorilla/schema"
	"github.com/matst80/casa-finder/pkg/types"
)

var decoder = schema.NewDecoder()
var encoder = schema.NewEncoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(types.Tokens{}, func(value string) reflect.Value {
		return reflect.ValueOf(types.SplitTokens(value))
	})
	encoder.RegisterEncoder(types.Tokens{}, func(v reflect.Value) string {
		return v.Interface().(types.Tokens).Join()
	})
}

// EncodeValues projects the filter state onto query values. Empty fields are
// left out and a contract filter containing "entrambi" is not written.
func EncodeValues(state types.FilterState) (url.Values, error) {
	s := state.Canonical()
	if s.Basic.ContractDisabled() {
		s.Basic.ContractType = types.Tokens{}
	}
	values := url.Values{}
	if err := encoder.Encode(&s.Basic, values); err != nil {
		return nil, err
	}
	if err := encoder.Encode(&s.Advanced, values); err != nil {
		return nil, err
	}
	for key, v := range values {
		if len(v) == 0 || strings.Join(v, "") == "" {
			delete(values, key)
		}
	}
	return values, nil
}

// Encode returns the query string (without leading "?") for the state, keys sorted.
func Encode(state types.FilterState) (string, error) {
	values, err := EncodeValues(state)
	if err != nil {
		return "", err
	}
	return values.Encode(), nil
}

// DecodeValues rebuilds the filter state from query values. Missing keys
// decode to empty filters, defaults only apply when there are no values at all.
func DecodeValues(values url.Values) (types.FilterState, error) {
	if len(values) == 0 {
		return types.DefaultFilterState(), nil
	}
	state := types.NewFilterState()
	err := decoder.Decode(&state.Basic, values)
	if advErr := decoder.Decode(&state.Advanced, values); err == nil {
		err = advErr
	}
	state.Basic.Normalize()
	state.Advanced.Normalize()
	return state, err
}

// Decode parses a raw query string, with or without the leading "?".
// The returned state is always usable, a parse error only reports what was skipped.
func Decode(query string) (types.FilterState, error) {
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return types.DefaultFilterState(), nil
	}
	values, parseErr := url.ParseQuery(query)
	state, err := DecodeValues(values)
	if parseErr != nil {
		return state, parseErr
	}
	return state, err
}
