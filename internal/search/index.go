// index.go
//
// A community service for builders, their firms and their building projects
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of buildnet.
// buildnet is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// buildnet is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with buildnet.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package search

import "context"

// Index is the external full-text index. Documents are addressed by
// collection name and numeric id.
type Index interface {
	Upsert(ctx context.Context, index string, id uint64, doc map[string]any) error
	Delete(ctx context.Context, index string, id uint64) error
	// Query returns the ids of matching documents in relevance order and the total number of matches.
	Query(ctx context.Context, index, text string, page, perPage int) ([]uint64, int64, error)
}

// Noop is the index used when none is configured
type Noop struct{}

var _ Index = Noop{}

func (Noop) Upsert(context.Context, string, uint64, map[string]any) error { return nil }

func (Noop) Delete(context.Context, string, uint64) error { return nil }

func (Noop) Query(context.Context, string, string, int, int) ([]uint64, int64, error) {
	return nil, 0, nil
}

// Arrange reorders items to follow ids. Items missing from ids are dropped,
// ids missing from items are skipped.
func Arrange[T any](ids []uint64, items []T, key func(T) uint64) []T {
	byID := make(map[uint64]T, len(items))
	for _, item := range items {
		byID[key(item)] = item
	}

	ordered := make([]T, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered
}

// offset converts a 1-based page into a result offset
func offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
