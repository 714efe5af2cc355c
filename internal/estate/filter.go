package estate

import (
	"math"
	"strconv"
	"strings"

	"bds-go/internal/model"
)

// Criteria holds search predicates as entered by the user. Numeric bounds
// stay raw strings so malformed input can be reported as InvalidCriteriaError
// instead of silently ignored. Empty fields match everything.
type Criteria struct {
	Category string // case-insensitive substring
	Project  string // case-insensitive substring
	PriceMin string // inclusive, default 0
	PriceMax string // inclusive, default +Inf
	AreaMin  string // inclusive, default 0
	AreaMax  string // inclusive, default +Inf
	Status   string // exact match
}

// IsZero returns true when no criterion is supplied.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Filter evaluates criteria over rows and returns the rows satisfying every
// supplied criterion, preserving the input order. It is a pure function: the
// input slice and its listings are not mutated.
//
// Listings without an area value fail any explicitly supplied area bound and
// pass when both bounds are absent.
func Filter(rows []*model.Listing, c Criteria) ([]*model.Listing, error) {
	priceMin, err := parseBound("minimum price", c.PriceMin, 0)
	if err != nil {
		return nil, err
	}
	priceMax, err := parseBound("maximum price", c.PriceMax, math.Inf(1))
	if err != nil {
		return nil, err
	}
	areaMin, err := parseBound("minimum area", c.AreaMin, 0)
	if err != nil {
		return nil, err
	}
	areaMax, err := parseBound("maximum area", c.AreaMax, math.Inf(1))
	if err != nil {
		return nil, err
	}

	areaFiltered := c.AreaMin != "" || c.AreaMax != ""

	var out []*model.Listing
	for _, l := range rows {
		if !containsFold(l.Category, c.Category) {
			continue
		}
		if !containsFold(l.Project, c.Project) {
			continue
		}
		if l.Price < priceMin || l.Price > priceMax {
			continue
		}
		if l.HasArea() {
			if *l.Area < areaMin || *l.Area > areaMax {
				continue
			}
		} else if areaFiltered {
			continue
		}
		if c.Status != "" && l.Status != c.Status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// parseBound parses a numeric bound, returning def for empty input.
func parseBound(field, raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &InvalidCriteriaError{Field: field, Value: raw}
	}
	return v, nil
}

// containsFold reports whether s contains substr, ignoring case.
// An empty substr matches everything.
func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
