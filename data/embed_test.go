package data

import (
	"encoding/json"
	"testing"
)

func TestSearchMapping(t *testing.T) {
	for _, index := range []string{"posts", "users", "companies", "builds"} {
		mapping, err := SearchMapping(index)
		if err != nil {
			t.Fatalf("Expected a mapping for %s, got %v", index, err)
		}

		var doc map[string]any
		if err := json.Unmarshal(mapping, &doc); err != nil {
			t.Errorf("Mapping for %s is not valid JSON: %v", index, err)
		}
		if _, ok := doc["mappings"]; !ok {
			t.Errorf("Mapping for %s has no mappings section", index)
		}
	}

	if _, err := SearchMapping("nope"); err == nil {
		t.Error("Expected an error for an unknown index")
	}
}
