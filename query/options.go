package query

import (
	"context"
	"sort"
	"strings"

	"app/database"
	"app/models"
)

// FilterOptions returns the distinct facet values currently present in the
// table. Stored tag strings are delimited, so the union is split and
// deduplicated here rather than in SQL.
func FilterOptions(ctx context.Context, store database.Store) (models.FilterOptions, error) {
	fv, err := store.FacetValues(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}

	return models.FilterOptions{
		Regions:        fv.Regions,
		Genders:        fv.Genders,
		Categories:     fv.Categories,
		PaymentMethods: fv.PaymentMethods,
		AgeMin:         fv.AgeMin,
		AgeMax:         fv.AgeMax,
		Tags:           SplitTags(fv.RawTags),
	}, nil
}

// SplitTags splits delimited tag strings into individual tokens, trims them,
// and returns the sorted, deduplicated union.
func SplitTags(raw []string) []string {
	seen := map[string]bool{}
	tags := []string{}
	for _, s := range raw {
		for _, tag := range strings.Split(s, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}
