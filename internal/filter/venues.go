package filter

import (
	"sort"
	"strings"

	"github.com/alexivanou/crwd-api/internal/geo"
	"github.com/alexivanou/crwd-api/internal/model"
)

// ApplyVenueFilters keeps venues that satisfy every criterion. With an origin
// the result is ordered by distance, otherwise catalog order is kept.
func ApplyVenueFilters(venues []model.Venue, criteria model.VenueCriteria) []model.VenueResult {
	needle := normalize(criteria.SearchText)
	categories := toSet(criteria.Categories)

	out := make([]model.VenueResult, 0, len(venues))
	for _, v := range venues {
		if needle != "" && !containsAny(needle, v.Name, v.Description, v.Category) && !tagsContain(needle, v.Tags) {
			continue
		}
		if len(categories) > 0 && !categories[strings.ToLower(v.Category)] {
			continue
		}
		if criteria.OpenOnly && !v.IsOpen {
			continue
		}
		if criteria.CityCode != "" && !strings.EqualFold(v.CityCode, criteria.CityCode) {
			continue
		}

		res := model.VenueResult{Venue: v}
		if criteria.Origin != nil {
			d := geo.Haversine(*criteria.Origin, v.Location())
			if criteria.RadiusKm > 0 && d > criteria.RadiusKm {
				continue
			}
			res.DistanceKm = &d
		}
		out = append(out, res)
	}

	if criteria.Origin != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return *out[i].DistanceKm < *out[j].DistanceKm
		})
	}
	return out
}
