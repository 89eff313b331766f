package parser

import (
	"fmt"

	"BlogScraper/internal/scanner"
)

// Builtin lists every blog with dedicated extraction rules.
func Builtin() []scanner.Source {
	return []scanner.Source{
		GoogleResearch(),
		AllThingsDistributed(),
		Kleppmann(),
		LyftEngineering(),
		MetaEngineering(),
	}
}

// NewRegistry registers the built-in sources and applies overrides.
func NewRegistry(overrides []scanner.Override) (*scanner.Registry, error) {
	reg := scanner.NewRegistry()
	for _, src := range Builtin() {
		if err := reg.Register(src); err != nil {
			return nil, fmt.Errorf("register %s: %w", src.Key, err)
		}
	}
	if err := reg.Configure(overrides); err != nil {
		return nil, fmt.Errorf("configure sources: %w", err)
	}
	return reg, nil
}
