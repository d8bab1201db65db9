package codebase

import (
	"context"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/pqls/pq/parser"
)

func TestPositionConversion(t *testing.T) {
	state, err := parser.Lex(context.Background(), parser.DefaultSettings(), "x\n\"é😀\" & y")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		client protocol.Position
		byte   parser.Position
	}{
		{protocol.Position{Line: 0, Character: 1}, parser.Position{Line: 0, Column: 1}},
		{protocol.Position{Line: 1, Character: 2}, parser.Position{Line: 1, Column: 3}},
		{protocol.Position{Line: 1, Character: 4}, parser.Position{Line: 1, Column: 7}},
		{protocol.Position{Line: 1, Character: 9}, parser.Position{Line: 1, Column: 12}},
	}
	for _, tt := range tests {
		if got := toPosition(state, tt.client); got != tt.byte {
			t.Errorf("toPosition(%v) = %v, want %v", tt.client, got, tt.byte)
		}
		if got := fromPosition(state, tt.byte); got != tt.client {
			t.Errorf("fromPosition(%v) = %v, want %v", tt.byte, got, tt.client)
		}
	}
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///tmp/a%20b.pq", "/tmp/a b.pq"},
		{"file:///tmp/x/../y.pq", "/tmp/y.pq"},
		{"untitled:1", "untitled:1"},
	}
	for _, tt := range tests {
		got, err := uriToPath(tt.uri)
		if err != nil || got != tt.want {
			t.Errorf("uriToPath(%q) = %q, %v; want %q", tt.uri, got, err, tt.want)
		}
	}
}
