package pq

import (
	"context"
	"strings"

	"github.com/dhamidi/pqls/pq/parser"
)

// Candidates is the outcome of one autocomplete strategy. A failed strategy
// leaves Items empty and sets Err; the other strategies are unaffected.
type Candidates[T any] struct {
	Items []T
	Err   error
}

func candidates[T any](items []T, err error) Candidates[T] {
	if err != nil {
		return Candidates[T]{Err: err}
	}
	return Candidates[T]{Items: items}
}

// FieldAccessItem is a field name offered inside a selector. Span is the
// text the completion replaces; it is empty when nothing was typed yet.
type FieldAccessItem struct {
	Key  string
	Span parser.Span
}

type Autocomplete struct {
	Keyword          Candidates[string]
	FieldAccess      Candidates[FieldAccessItem]
	LanguageConstant Candidates[string]
	PrimitiveType    Candidates[string]
}

// Labels merges the candidates of all successful strategies, field names
// first.
func (a Autocomplete) Labels() []string {
	var out []string
	seen := map[string]bool{}
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	for _, item := range a.FieldAccess.Items {
		add(item.Key)
	}
	for _, group := range [][]string{a.LanguageConstant.Items, a.PrimitiveType.Items, a.Keyword.Items} {
		for _, label := range group {
			add(label)
		}
	}
	return out
}

func (a Autocomplete) Errors() []error {
	var errs []error
	for _, err := range []error{a.Keyword.Err, a.FieldAccess.Err, a.LanguageConstant.Err, a.PrimitiveType.Err} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func autocomplete(ctx context.Context, site *Site) Autocomplete {
	return Autocomplete{
		Keyword:          candidates(AutocompleteKeyword(ctx, site)),
		FieldAccess:      candidates(AutocompleteFieldAccess(ctx, site)),
		LanguageConstant: candidates(AutocompleteLanguageConstant(ctx, site)),
		PrimitiveType:    candidates(AutocompletePrimitiveType(ctx, site)),
	}
}

func filterPrefix(words []string, prefix string) []string {
	if prefix == "" {
		return words
	}
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}
