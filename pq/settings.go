package pq

import "github.com/dhamidi/pqls/pq/parser"

// Settings configures parsing and inspection.
type Settings struct {
	Parser parser.Settings
	// ScopeTyper infers types for scope items. Nil disables inference.
	ScopeTyper ScopeTyper
}

func DefaultSettings() Settings {
	return Settings{
		Parser:     parser.DefaultSettings(),
		ScopeTyper: DefaultScopeTyper{},
	}
}
