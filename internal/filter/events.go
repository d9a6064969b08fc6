// Package filter narrows and orders catalog listings.
//
// Every function here is pure: inputs are never modified and the same
// arguments always produce the same result.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/alexivanou/crwd-api/internal/model"
)

// EventPredicate reports whether an event should be kept
type EventPredicate func(model.Event) bool

// ApplyFilters returns the events that satisfy every criterion, ordered by
// date, or by engagement when trending mode is on.
func ApplyFilters(events []model.Event, criteria model.FilterCriteria) []model.Event {
	predicates := EventPredicates(criteria)

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if matchAll(e, predicates) {
			out = append(out, e)
		}
	}

	if criteria.Trending {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Engagement() > out[j].Engagement()
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return civilDate(out[i].Date).Before(civilDate(out[j].Date))
		})
	}
	return out
}

// EventPredicates builds one predicate per constraining field
func EventPredicates(criteria model.FilterCriteria) []EventPredicate {
	var predicates []EventPredicate

	if needle := normalize(criteria.SearchText); needle != "" {
		predicates = append(predicates, func(e model.Event) bool {
			return containsAny(needle, e.Name, e.Description, e.VenueName) || tagsContain(needle, e.Tags)
		})
	}
	if criteria.CityCode != "" {
		city := criteria.CityCode
		predicates = append(predicates, func(e model.Event) bool {
			return strings.EqualFold(e.CityCode, city)
		})
	}
	if w := criteria.DateWindow; w != nil {
		window := *w
		predicates = append(predicates, func(e model.Event) bool {
			return inWindow(e.Date, window)
		})
	}
	if r := criteria.PriceRange; r != nil {
		pr := *r
		predicates = append(predicates, func(e model.Event) bool {
			return e.Price.GreaterThanOrEqual(pr.Min) && e.Price.LessThanOrEqual(pr.Max)
		})
	}
	if len(criteria.Categories) > 0 {
		set := toSet(criteria.Categories)
		predicates = append(predicates, func(e model.Event) bool {
			return set[strings.ToLower(string(e.Category))]
		})
	}
	if criteria.Trending {
		threshold := criteria.Threshold()
		predicates = append(predicates, func(e model.Event) bool {
			return e.Engagement() >= threshold
		})
	}
	return predicates
}

// Upcoming returns a window that starts on the calendar day of now
func Upcoming(now time.Time) *model.DateWindow {
	return &model.DateWindow{Start: civilDate(now)}
}

func matchAll(e model.Event, predicates []EventPredicate) bool {
	for _, p := range predicates {
		if !p(e) {
			return false
		}
	}
	return true
}

func inWindow(date time.Time, w model.DateWindow) bool {
	d := civilDate(date)
	if !w.Start.IsZero() && d.Before(civilDate(w.Start)) {
		return false
	}
	if !w.End.IsZero() && d.After(civilDate(w.End)) {
		return false
	}
	return true
}

// civilDate drops the time of day, keeping the calendar date as written
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
