// errors.go
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

package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup by key finds nothing
	ErrNotFound = errors.New("no such entity")
	// ErrForbidden is returned when the principal lacks the role or membership for an action
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized is returned when an action needs an authenticated user
	ErrUnauthorized = errors.New("authentication required")
	// ErrInvalidCredentials is returned by Authenticate
	ErrInvalidCredentials = errors.New("invalid nickname or password")
	// ErrNoResetSession is returned for any unusable password reset token
	ErrNoResetSession = errors.New("no such reset session")
	// ErrAlreadyEmployed is returned when a user with an employer tries to join another company
	ErrAlreadyEmployed = errors.New("user already works for a company")
	// ErrNotEmployed is returned when an action needs an employer
	ErrNotEmployed = errors.New("user does not work for a company")
	// ErrSelfFollow is returned when a user tries to follow themself
	ErrSelfFollow = errors.New("users cannot follow themselves")
)

// ValidationError reports bad input on one field, detected before any write
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// notFound maps gorm's missing record error onto ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// duplicate maps a unique constraint violation onto a validation error for field
func duplicate(err error, field, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return invalid(field, "%s", message)
	}
	return err
}
