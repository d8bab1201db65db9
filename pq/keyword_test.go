package pq

import (
	"context"
	"testing"
)

func TestAutocompleteKeyword(t *testing.T) {
	expression := []string{"each", "error", "false", "if", "let", "not", "true", "try", "type"}
	document := []string{"each", "error", "false", "if", "let", "not", "section", "true", "try", "type"}
	operators := []string{"and", "as", "is", "meta", "or"}

	tests := []struct {
		text string
		want []string
	}{
		{"|", document},
		{"|if", document},
		{"if i|f", []string{"if"}},
		{"if|", nil},
		{"if |", expression},
		{"if 1|", nil},
		{"if 1 |", []string{"then"}},
		{"if 1 th|en 1 else", []string{"then"}},
		{"if 1 then 1 |", []string{"else"}},
		{"if 1 then 1 else|", nil},
		{"if 1 then 1 else |", expression},
		{"if error|", nil},
		{"try true|", []string{"true"}},
		{"try true |", []string{"and", "as", "is", "meta", "or", "otherwise"}},
		{"try true o |", nil},
		{"try true otherwise| false", nil},
		{"try true otherwise |", expression},
		{"let a = |", expression},
		{"let a = 1|", nil},
		{"let a = 1 |", []string{"and", "as", "in", "is", "meta", "or"}},
		{"let a = 1, |", nil},
		{"let a = 1 in |", expression},
		{"{1|", nil},
		{"{1, |", expression},
		{"foo(|", expression},
		{"foo(1, |", expression},
		{"[a = 1, |", nil},
		{"[|", nil},
		{"[] |", []string{"section"}},
		{"[] |s", nil},
		{"[] s |", nil},
		{"x a|", []string{"and", "as"}},
		{"1 + |", expression},
		{"1 + 2 |", operators},
		{"each |", expression},
		{"(x|) => 1", nil},
		{"(x, y |", []string{"as"}},
		{"(x |", nil},
		{"section foo; |", []string{"shared"}},
		{"section foo; a = 1; b = 2 |", operators},
		{"section foo; a = () => true; b = \"string\"; c = 1; d = |;", expression},
		{"type |", nil},
		{"x as |", nil},
		{"not |", expression},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			site := siteAt(t, tt.text)
			got, err := AutocompleteKeyword(context.Background(), site)
			if err != nil {
				t.Fatal(err)
			}
			if !equalStrings(sorted(got), tt.want) {
				t.Errorf("got %v, want %v", sorted(got), tt.want)
			}
		})
	}
}

func TestAutocompleteKeywordCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AutocompleteKeyword(ctx, siteAt(t, "if |")); err == nil {
		t.Error("got nil error, want cancellation")
	}
}
