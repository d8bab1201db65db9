package pq

import (
	"context"
	"testing"
)

func TestAutocompletePrimitiveType(t *testing.T) {
	all := PrimitiveTypes()

	tests := []struct {
		text string
		want []string
	}{
		{"type|", nil},
		{"type |", all},
		{"type | number", all},
		{"type n|", []string{"none", "null", "number"}},
		{"(x|) => 1", nil},
		{"(x as| number) => 1", nil},
		{"(x as | number) => 1", all},
		{"(x as | nullable number) => 1", all},
		{"(x as nullable| number) => 1", nil},
		{"(x as nullable |number) => 1", all},
		{"(x as nullable num|ber) => 1", []string{"number"}},
		{"let a = 1 is |", all},
		{"1 as t|", []string{"table", "text", "time", "type"}},
		{"1 + |", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := AutocompletePrimitiveType(context.Background(), siteAt(t, tt.text))
			if err != nil {
				t.Fatal(err)
			}
			if !equalStrings(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
