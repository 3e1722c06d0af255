package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/ngmaloney/astroscope/internal/models"
)

// DefaultMaxMagnitude is the magnitude limit the dashboard starts with.
const DefaultMaxMagnitude = 10.0

// Filter is a set of predicates over catalog rows. The zero value matches everything.
// Filters never modify the rows they are applied to.
type Filter struct {
	Constellations []string // match any, case-insensitive; empty matches all
	Types          []string // match any, case-insensitive; empty matches all
	MaxMagnitude   float64  // inclusive upper bound when LimitMagnitude is set
	LimitMagnitude bool     // rows without a magnitude never pass a magnitude limit
}

// DefaultFilter limits the catalog to objects of magnitude 10 or brighter.
func DefaultFilter() Filter {
	return Filter{MaxMagnitude: DefaultMaxMagnitude, LimitMagnitude: true}
}

// Match reports whether a row with the given attributes passes the filter.
func (f Filter) Match(constellation, typ string, mag float64, hasMag bool) bool {
	if len(f.Constellations) > 0 && !containsFold(f.Constellations, constellation) {
		return false
	}
	if len(f.Types) > 0 && !containsFold(f.Types, typ) {
		return false
	}
	if f.LimitMagnitude && (!hasMag || mag > f.MaxMagnitude) {
		return false
	}
	return true
}

// MatchObject reports whether a catalog object passes the filter.
func (f Filter) MatchObject(o models.Object) bool {
	return f.Match(o.Constellation, o.Type, o.VMag, o.HasVMag)
}

// Objects returns the objects passing the filter, in their original order.
func (f Filter) Objects(objects []models.Object) []models.Object {
	out := make([]models.Object, 0, len(objects))
	for _, o := range objects {
		if f.MatchObject(o) {
			out = append(out, o)
		}
	}
	return out
}

// String renders the filter in the expression syntax accepted by ParseFilter.
func (f Filter) String() string {
	var parts []string
	if len(f.Constellations) > 0 {
		parts = append(parts, "const:"+strings.Join(f.Constellations, ","))
	}
	if len(f.Types) > 0 {
		parts = append(parts, "type:"+strings.Join(f.Types, ","))
	}
	if f.LimitMagnitude {
		parts = append(parts, "mag:"+strconv.FormatFloat(f.MaxMagnitude, 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

// ParseFilter parses a filter expression such as "const:And,Cas type:G mag:8.5".
// Terms are space separated; "mag:" with no value (or "mag:any") removes the limit.
func ParseFilter(expr string) (Filter, error) {
	var f Filter
	for _, term := range strings.Fields(expr) {
		key, value, ok := strings.Cut(term, ":")
		if !ok {
			return Filter{}, fmt.Errorf("invalid filter term %q: expected key:value", term)
		}
		switch strings.ToLower(key) {
		case "const", "constellation", "c":
			f.Constellations = append(f.Constellations, splitList(value)...)
		case "type", "t":
			f.Types = append(f.Types, splitList(value)...)
		case "mag", "m":
			if value == "" || strings.EqualFold(value, "any") {
				f.LimitMagnitude = false
				continue
			}
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Filter{}, fmt.Errorf("invalid magnitude %q: %w", value, err)
			}
			f.MaxMagnitude = v
			f.LimitMagnitude = true
		default:
			return Filter{}, fmt.Errorf("unknown filter key %q (want const, type or mag)", key)
		}
	}
	return f, nil
}

// Constellations lists the distinct non-empty constellations, sorted.
func Constellations(objects []models.Object) []string {
	return distinct(objects, func(o models.Object) string { return o.Constellation })
}

// Types lists the distinct non-empty object types, sorted.
func Types(objects []models.Object) []string {
	return distinct(objects, func(o models.Object) string { return o.Type })
}

func distinct(objects []models.Object, key func(models.Object) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range objects {
		k := key(o)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, v) })
}
