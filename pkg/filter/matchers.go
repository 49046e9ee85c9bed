package filter

import (
	"math"
	"strconv"
	"strings"

	"github.com/matst80/casa-finder/pkg/types"
	"golang.org/x/text/cases"
)

// BoundError describes a numeric filter value that could not be parsed. The
// value is ignored by the pipeline.
type BoundError struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (e BoundError) Error() string {
	return "invalid value " + strconv.Quote(e.Value) + " for " + e.Field
}

type predicate func(p *types.Property) bool

type folder struct {
	caser cases.Caser
}

func newFolder() *folder {
	return &folder{caser: cases.Fold()}
}

func (f *folder) fold(s string) string {
	return f.caser.String(strings.TrimSpace(s))
}

// normalizeType makes "casa indipendente" and "Casa-Indipendente" equal.
func (f *folder) normalizeType(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(f.fold(s))
	return strings.Join(strings.Fields(s), " ")
}

func (f *folder) foldAll(tokens types.Tokens, fn func(string) string) []string {
	ret := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if v := fn(t); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

func (f *folder) keywordMatcher(keyword string) predicate {
	k := f.fold(keyword)
	if k == "" {
		return nil
	}
	return func(p *types.Property) bool {
		for _, field := range []string{p.Title, p.Address, p.City, p.Region, p.PropertyType, string(p.Id)} {
			if strings.Contains(f.fold(field), k) {
				return true
			}
		}
		return false
	}
}

func (f *folder) equalsAny(tokens types.Tokens, normalize func(string) string, value func(p *types.Property) string) predicate {
	wanted := f.foldAll(tokens, normalize)
	if len(wanted) == 0 {
		return nil
	}
	return func(p *types.Property) bool {
		v := normalize(value(p))
		for _, w := range wanted {
			if v == w {
				return true
			}
		}
		return false
	}
}

func (f *folder) cityMatcher(tokens types.Tokens) predicate {
	return f.equalsAny(tokens, f.fold, func(p *types.Property) string { return p.City })
}

func (f *folder) typeMatcher(tokens types.Tokens) predicate {
	return f.equalsAny(tokens, f.normalizeType, func(p *types.Property) string { return p.PropertyType })
}

// contractMatcher is skipped when the set contains "entrambi".
func (f *folder) contractMatcher(tokens types.Tokens) predicate {
	if tokens.Contains(types.ContractBoth) {
		return nil
	}
	return f.equalsAny(tokens, f.fold, func(p *types.Property) string { return p.ContractType })
}

// locationMatcher accepts a token naming the city or region, or a part of the address.
func (f *folder) locationMatcher(tokens types.Tokens) predicate {
	wanted := f.foldAll(tokens, f.fold)
	if len(wanted) == 0 {
		return nil
	}
	return func(p *types.Property) bool {
		city, region, address := f.fold(p.City), f.fold(p.Region), f.fold(p.Address)
		for _, w := range wanted {
			if w == city || w == region || strings.Contains(address, w) {
				return true
			}
		}
		return false
	}
}

type bucket struct {
	value   float64
	atLeast bool
}

func (b bucket) matches(v float64) bool {
	if b.atLeast {
		return v >= b.value
	}
	return v == b.value
}

// parseNumber accepts finite numbers only, "NaN" and "Inf" would make every
// comparison false and empty the result.
func parseNumber(value string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseBucket reads "3" as exactly three and "5+" as five or more.
func parseBucket(token string) (bucket, bool) {
	token = strings.TrimSpace(token)
	atLeast := strings.HasSuffix(token, "+")
	v, ok := parseNumber(strings.TrimSuffix(token, "+"))
	if !ok || v < 0 {
		return bucket{}, false
	}
	return bucket{value: v, atLeast: atLeast}, true
}

func parseBound(value string) (float64, bool) {
	return parseNumber(strings.TrimSuffix(strings.TrimSpace(value), "+"))
}

type diagnostics struct {
	errors []BoundError
}

func (d *diagnostics) add(field, value string) {
	d.errors = append(d.errors, BoundError{Field: field, Value: value})
}

func (d *diagnostics) buckets(field string, tokens types.Tokens) []bucket {
	ret := make([]bucket, 0, len(tokens))
	for _, t := range tokens {
		if b, ok := parseBucket(t); ok {
			ret = append(ret, b)
		} else {
			d.add(field, t)
		}
	}
	return ret
}

func (d *diagnostics) bucketMatcher(field string, tokens types.Tokens, value func(p *types.Property) float64) predicate {
	buckets := d.buckets(field, tokens)
	if len(buckets) == 0 {
		return nil
	}
	return func(p *types.Property) bool {
		v := value(p)
		for _, b := range buckets {
			if b.matches(v) {
				return true
			}
		}
		return false
	}
}

func (d *diagnostics) minMatcher(field string, tokens types.Tokens, value func(p *types.Property) float64) predicate {
	bounds := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		if v, ok := parseBound(t); ok {
			bounds = append(bounds, v)
		} else {
			d.add(field, t)
		}
	}
	if len(bounds) == 0 {
		return nil
	}
	return func(p *types.Property) bool {
		v := value(p)
		for _, b := range bounds {
			if v >= b {
				return true
			}
		}
		return false
	}
}

// maxMatcher treats a top bucket like "500+" as at least that value.
func (d *diagnostics) maxMatcher(field string, tokens types.Tokens, value func(p *types.Property) float64) predicate {
	buckets := d.buckets(field, tokens)
	if len(buckets) == 0 {
		return nil
	}
	return func(p *types.Property) bool {
		v := value(p)
		for _, b := range buckets {
			if b.atLeast && v >= b.value || !b.atLeast && v <= b.value {
				return true
			}
		}
		return false
	}
}

func (d *diagnostics) scalar(field, value string, fn func(bound float64) predicate) predicate {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	v, ok := parseNumber(value)
	if !ok {
		d.add(field, value)
		return nil
	}
	return fn(v)
}
