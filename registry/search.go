package registry

import (
	"sort"
	"strings"

	"github.com/julez-dev/stvsync/emote"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

type SearchResult struct {
	SetKey   string      `json:"set_key"`
	Emote    emote.Emote `json:"emote"`
	Distance int         `json:"distance"`
}

// Search case insensitively fuzzy matches query against the names of all loaded emotes, best matches first.
func (r *Registry) Search(query string, limit int) []SearchResult {
	r.m.RLock()
	defer r.m.RUnlock()

	var (
		names  []string
		lookup []SearchResult
	)

	for key, set := range r.sets {
		for _, e := range set.Emotes {
			names = append(names, strings.ToLower(e.Name))
			lookup = append(lookup, SearchResult{SetKey: key, Emote: e})
		}
	}

	// names are folded up front so the distance ignores case as well
	ranks := fuzzy.RankFind(strings.ToLower(query), names)
	sort.Sort(ranks)

	results := make([]SearchResult, 0, len(ranks))
	for _, rank := range ranks {
		if limit > 0 && len(results) >= limit {
			break
		}

		res := lookup[rank.OriginalIndex]
		res.Distance = rank.Distance
		results = append(results, res)
	}

	return results
}
