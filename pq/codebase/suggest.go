package codebase

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// Suggest returns up to three names from candidates that fuzzy-match name,
// best first. name itself is never suggested.
func Suggest(name string, candidates []string) []string {
	var pool []string
	for _, c := range candidates {
		if c != name {
			pool = append(pool, c)
		}
	}
	var out []string
	for _, m := range fuzzy.Find(name, pool) {
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	if len(out) > 0 || len(name) < 2 {
		return out
	}
	// A dropped or swapped last letter defeats subsequence matching, so
	// retry with the name shortened by one.
	for _, m := range fuzzy.Find(name[:len(name)-1], pool) {
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

type completionSource []CompletionItem

func (s completionSource) String(i int) string { return s[i].Label }

func (s completionSource) Len() int { return len(s) }

// Rank orders items for the typed prefix. Items starting with the prefix
// keep their order and come first; the rest follow by fuzzy score, and
// items that do not match at all are dropped.
func Rank(prefix string, items []CompletionItem) []CompletionItem {
	if prefix == "" {
		return items
	}
	var exact, rest []CompletionItem
	for _, item := range items {
		if strings.HasPrefix(item.Label, prefix) {
			exact = append(exact, item)
		} else {
			rest = append(rest, item)
		}
	}
	for _, m := range fuzzy.FindFrom(prefix, completionSource(rest)) {
		exact = append(exact, rest[m.Index])
	}
	return exact
}
