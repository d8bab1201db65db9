package parser

// DefaultMaxDepth bounds expression nesting during parsing.
const DefaultMaxDepth = 512

// Settings configures lexing and parsing. A zero Settings is usable: an
// empty Locale falls back to en-US and a zero MaxDepth to DefaultMaxDepth.
type Settings struct {
	Locale   string
	MaxDepth int
}

func DefaultSettings() Settings {
	return Settings{
		Locale:   DefaultLocale,
		MaxDepth: DefaultMaxDepth,
	}
}

func (s Settings) locale() string {
	if s.Locale == "" {
		return DefaultLocale
	}
	return s.Locale
}

func (s Settings) maxDepth() int {
	if s.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return s.MaxDepth
}
