package data

import (
	"embed"
	"fmt"
)

//go:embed search/*.json
var searchMappings embed.FS

// SearchMapping returns the elasticsearch settings and mappings for index
func SearchMapping(index string) ([]byte, error) {
	mapping, err := searchMappings.ReadFile("search/" + index + ".json")
	if err != nil {
		return nil, fmt.Errorf("no search mapping for index %s: %w", index, err)
	}
	return mapping, nil
}
