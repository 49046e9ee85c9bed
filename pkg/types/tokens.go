package types

import (
	"encoding/json"
	"slices"
	"strings"
)

// Tokens is a set of filter tokens. An empty set means no constraint.
type Tokens []string

// SplitTokens splits a comma separated value, dropping empty tokens.
func SplitTokens(value string) Tokens {
	ret := Tokens{}
	for part := range strings.SplitSeq(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ret = append(ret, part)
		}
	}
	return ret
}

// MakeTokens copies values into a non nil token set, skipping blanks and duplicates.
func MakeTokens(values ...string) Tokens {
	ret := make(Tokens, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(ret, v) {
			continue
		}
		ret = append(ret, v)
	}
	return ret
}

func (t Tokens) Join() string {
	return strings.Join(t, ",")
}

func (t Tokens) IsEmpty() bool {
	return len(t) == 0
}

func (t Tokens) Contains(value string) bool {
	return slices.Contains(t, value)
}

func (t Tokens) Equal(other Tokens) bool {
	return slices.Equal(t, other)
}

// Clone never returns nil.
func (t Tokens) Clone() Tokens {
	if t == nil {
		return Tokens{}
	}
	return slices.Clone(t)
}

func (t Tokens) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON accepts both a list of strings and a single string.
func (t *Tokens) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = MakeTokens(list...)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*t = MakeTokens(single)
	return nil
}
