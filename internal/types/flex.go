// flex.go
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

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexNumber is an optional integer that can be unmarshaled from a JSON number,
// a JSON string holding a number, or null. Set reports whether a value was given.
type FlexNumber[T ~int64 | ~uint64] struct {
	Value T
	Set   bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexNumber[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = FlexNumber[T]{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = FlexNumber[T]{}
			return nil
		}
		data = []byte(s)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("FlexNumber: invalid number %q", string(data))
	}
	*f = FlexNumber[T]{Value: v, Set: true}
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexNumber[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns nil when no value was given
func (f FlexNumber[T]) Ptr() *T {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// Of wraps v as a set FlexNumber
func Of[T ~int64 | ~uint64](v T) FlexNumber[T] {
	return FlexNumber[T]{Value: v, Set: true}
}

// FlexList is a slice that can be unmarshaled from a JSON array or a single item.
type FlexList[T any] []T

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = nil
		return nil
	}

	if data[0] == '[' {
		var slice []T
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*f = slice
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*f = FlexList[T]{item}
	return nil
}
