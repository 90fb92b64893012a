package menu

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MatchType labels how a search term matched the query.
type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchStartsWith MatchType = "starts_with"
	MatchContains   MatchType = "contains"
	MatchFuzzy      MatchType = "fuzzy"
)

const (
	// DefaultMinScore filters general searches.
	DefaultMinScore = 0.3
	// ResolveMinScore is the stricter cutoff used when the caller needs a
	// single definitive item rather than suggestions.
	ResolveMinScore = 0.6
	// SuggestMinScore is the loose cutoff used for name suggestions.
	SuggestMinScore = 0.2
)

// Match is one ranked search result.
type Match struct {
	Item      *Item     `json:"item"`
	Score     float64   `json:"score"`
	MatchType MatchType `json:"match_type"`
	Term      string    `json:"matched_term"`
}

type indexEntry struct {
	item  *Item
	terms []string
}

// Index is an immutable searchable view over a menu catalog. It is rebuilt
// wholesale whenever the catalog is (re)loaded, never patched in place.
type Index struct {
	entries []indexEntry
	byID    map[string]*Item
}

var wordPattern = regexp.MustCompile(`\w+`)

// NewIndex builds the search index from raw catalog records. Empty records
// are skipped rather than erred on; the upstream feed contains them.
func NewIndex(items []Item) *Index {
	ix := &Index{byID: make(map[string]*Item, len(items))}
	for i := range items {
		item := &items[i]
		if item.Name == "" && item.ShortName == "" {
			continue
		}
		ix.entries = append(ix.entries, indexEntry{
			item:  item,
			terms: searchTerms(item),
		})
		if item.ID != "" {
			ix.byID[string(item.ID)] = item
		}
	}
	return ix
}

func searchTerms(item *Item) []string {
	seen := map[string]struct{}{}
	var terms []string
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	add(item.Name)
	add(item.ShortName)
	for _, source := range []string{item.Name, item.ShortName} {
		for _, word := range wordPattern.FindAllString(strings.ToLower(source), -1) {
			add(word)
		}
	}
	add(item.Category)
	for _, word := range wordPattern.FindAllString(strings.ToLower(item.Category), -1) {
		add(word)
	}
	return terms
}

// Len reports how many items are indexed.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Search ranks indexed items against the query. Scoring precedence per term:
// exact equality 1.0, prefix 0.9, substring 0.8, otherwise a normalized
// edit-distance ratio. An item scores the max over its terms; items below
// minScore are dropped; ties keep catalog order.
func (ix *Index) Search(query string, limit int, minScore float64) []Match {
	if ix == nil || len(ix.entries) == 0 {
		return nil
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches []Match
	for _, entry := range ix.entries {
		best := Match{Item: entry.item}
		for _, term := range entry.terms {
			score, matchType := scoreTerm(query, term)
			if score > best.Score {
				best.Score = score
				best.MatchType = matchType
				best.Term = term
			}
		}
		if best.Score >= minScore {
			matches = append(matches, best)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func scoreTerm(query, term string) (float64, MatchType) {
	switch {
	case term == query:
		return 1.0, MatchExact
	case strings.HasPrefix(term, query):
		return 0.9, MatchStartsWith
	case strings.Contains(term, query):
		return 0.8, MatchContains
	default:
		return similarity(query, term), MatchFuzzy
	}
}

// similarity is a normalized edit-distance ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// ResolveItem returns the single best match above the resolve cutoff, or nil.
// A minScore of zero or below falls back to ResolveMinScore.
func (ix *Index) ResolveItem(query string, minScore float64) *Item {
	if minScore <= 0 {
		minScore = ResolveMinScore
	}
	matches := ix.Search(query, 1, minScore)
	if len(matches) == 0 {
		return nil
	}
	return matches[0].Item
}

// ItemByID looks an item up by its exact catalog id.
func (ix *Index) ItemByID(id ItemID) *Item {
	if ix == nil {
		return nil
	}
	return ix.byID[string(id)]
}

// ItemByName matches the full or short name case-insensitively. No fuzziness.
func (ix *Index) ItemByName(name string) *Item {
	if ix == nil {
		return nil
	}
	for _, entry := range ix.entries {
		if strings.EqualFold(entry.item.Name, name) || strings.EqualFold(entry.item.ShortName, name) {
			return entry.item
		}
	}
	return nil
}

// Suggestions returns up to limit distinct display names loosely matching the
// query, for "did you mean" style prompts. A minScore of zero or below falls
// back to SuggestMinScore.
func (ix *Index) Suggestions(query string, limit int, minScore float64) []string {
	if minScore <= 0 {
		minScore = SuggestMinScore
	}
	matches := ix.Search(query, limit, minScore)
	var suggestions []string
	for _, match := range matches {
		name := match.Item.DisplayName()
		if name == "" {
			continue
		}
		dup := false
		for _, existing := range suggestions {
			if existing == name {
				dup = true
				break
			}
		}
		if !dup {
			suggestions = append(suggestions, name)
		}
	}
	return suggestions
}

// Categories lists the distinct category labels in sorted order.
func (ix *Index) Categories() []string {
	if ix == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var categories []string
	for _, entry := range ix.entries {
		cat := entry.item.Category
		if cat == "" {
			continue
		}
		if _, dup := seen[cat]; dup {
			continue
		}
		seen[cat] = struct{}{}
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return categories
}

// ItemsInCategory returns the items in a category, matched case-insensitively,
// in catalog order.
func (ix *Index) ItemsInCategory(category string) []*Item {
	if ix == nil {
		return nil
	}
	var items []*Item
	for _, entry := range ix.entries {
		if strings.EqualFold(entry.item.Category, category) {
			items = append(items, entry.item)
		}
	}
	return items
}

// Summary renders a spoken-menu overview grouped by category, capped at
// maxPerCategory items each.
func (ix *Index) Summary(maxPerCategory int) string {
	if ix.Len() == 0 {
		return "I'm sorry, I'm having trouble loading our menu right now."
	}
	if maxPerCategory <= 0 {
		maxPerCategory = 5
	}

	ordered := []string{}
	grouped := map[string][]*Item{}
	for _, entry := range ix.entries {
		cat := entry.item.Category
		if cat == "" {
			cat = "Other"
		}
		if _, ok := grouped[cat]; !ok {
			ordered = append(ordered, cat)
		}
		grouped[cat] = append(grouped[cat], entry.item)
	}

	var b strings.Builder
	b.WriteString("Here's our menu:\n")
	for _, cat := range ordered {
		items := grouped[cat]
		fmt.Fprintf(&b, "\n%s:\n", cat)
		for i, item := range items {
			if i >= maxPerCategory {
				break
			}
			fmt.Fprintf(&b, "- %s\n", item.DisplayName())
		}
		if extra := len(items) - maxPerCategory; extra > 0 {
			fmt.Fprintf(&b, "... and %d more items\n", extra)
		}
	}
	return b.String()
}
