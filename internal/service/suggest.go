package service

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest ranks previously searched terms against prefix, best first.
// An empty prefix returns the first n cached terms.
func (r *Repository) Suggest(ctx context.Context, prefix string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	terms, err := r.store.Terms(ctx)
	if err != nil {
		return nil, err
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return terms[:min(n, len(terms))], nil
	}

	matches := fuzzy.RankFindNormalizedFold(prefix, terms)

	// Sort by distance (lower is better), then alphabetically
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Target < matches[j].Target
	})

	out := make([]string, 0, min(n, len(matches)))
	for _, m := range matches {
		if len(out) == n {
			break
		}
		out = append(out, m.Target)
	}
	return out, nil
}
