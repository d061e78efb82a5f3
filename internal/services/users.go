// users.go
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
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/models"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	maxDescription    = 200
	linkedinPrefix    = "https://www.linkedin.com/"
)

// RegisterInput is the registration payload
type RegisterInput struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
	Phone    string `json:"phone"`
	// Admin is decided by the server, never by the client
	Admin bool `json:"-"`
}

// ProfileInput carries the profile fields to change. Nil fields are left alone.
type ProfileInput struct {
	Nickname    *string `json:"nickname"`
	Name        *string `json:"name"`
	Surname     *string `json:"surname"`
	Gender      *string `json:"gender"`
	Phone       *string `json:"phone"`
	Description *string `json:"description"`
	Education   *string `json:"education"`
	Linkedin    *string `json:"linkedin"`
}

// ValidatePassword enforces the password policy: at least 8 characters with a
// digit, an upper case and a lower case letter.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return invalid("password", "must be at least %d characters", minPasswordLength)
	}

	var digit, upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	if !digit || !upper || !lower {
		return invalid("password", "must contain a digit, an upper case and a lower case letter")
	}
	return nil
}

// RegisterUser validates and creates a new user
func RegisterUser(ctx context.Context, st *database.Store, in RegisterInput) (*models.User, error) {
	nickname := strings.TrimSpace(in.Nickname)
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	surname := strings.TrimSpace(in.Surname)

	switch {
	case nickname == "" || utf8.RuneCountInString(nickname) > 64:
		return nil, invalid("nickname", "must be between 1 and 64 characters")
	case name == "":
		return nil, invalid("name", "is required")
	case surname == "":
		return nil, invalid("surname", "is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("email", "is not a valid address")
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	db := st.DB.WithContext(ctx)
	if taken, err := exists(db, &models.User{}, "nickname = ?", nickname); err != nil {
		return nil, err
	} else if taken {
		return nil, invalid("nickname", "is already taken")
	}
	if taken, err := exists(db, &models.User{}, "email = ?", email); err != nil {
		return nil, err
	} else if taken {
		return nil, invalid("email", "is already registered")
	}

	user := models.User{
		Nickname: nickname,
		Email:    email,
		Name:     name,
		Surname:  surname,
		Gender:   strings.TrimSpace(in.Gender),
		Phone:    strings.TrimSpace(in.Phone),
		Admin:    in.Admin,
		LastSeen: time.Now().UTC(),
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, err
	}

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, duplicate(err, "nickname", "nickname or email already registered")
	}

	st.Log.WithField("user_id", user.UserID).Info("user registered")
	return &user, nil
}

// Authenticate checks a nickname and password pair
func Authenticate(ctx context.Context, st *database.Store, nickname, password string) (*models.User, error) {
	var user models.User
	err := quiet(st.DB.WithContext(ctx)).First(&user, "nickname = ?", strings.TrimSpace(nickname)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetUser loads a user by id
func GetUser(ctx context.Context, st *database.Store, userID uint64) (*models.User, error) {
	var user models.User
	if err := quiet(st.DB.WithContext(ctx)).First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByNickname loads a user by nickname
func GetUserByNickname(ctx context.Context, st *database.Store, nickname string) (*models.User, error) {
	var user models.User
	if err := quiet(st.DB.WithContext(ctx)).First(&user, "nickname = ?", nickname).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of in to the user
func UpdateProfile(ctx context.Context, st *database.Store, userID uint64, in ProfileInput) (*models.User, error) {
	var user models.User

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		if err := quiet(tx).First(&user, "user_id = ?", userID).Error; err != nil {
			return notFound(err)
		}

		if in.Nickname != nil {
			nickname := strings.TrimSpace(*in.Nickname)
			if nickname == "" || utf8.RuneCountInString(nickname) > 64 {
				return invalid("nickname", "must be between 1 and 64 characters")
			}
			if nickname != user.Nickname {
				taken, err := exists(tx, &models.User{}, "nickname = ? AND user_id <> ?", nickname, userID)
				if err != nil {
					return err
				}
				if taken {
					return invalid("nickname", "is already taken")
				}
				user.Nickname = nickname
			}
		}
		if in.Description != nil {
			if utf8.RuneCountInString(*in.Description) > maxDescription {
				return invalid("description", "must be at most %d characters", maxDescription)
			}
			user.Description = strings.TrimSpace(*in.Description)
		}
		if in.Linkedin != nil {
			linkedin := strings.TrimSpace(*in.Linkedin)
			if linkedin != "" && !strings.HasPrefix(linkedin, linkedinPrefix) {
				return invalid("linkedin", "must start with %s", linkedinPrefix)
			}
			user.Linkedin = linkedin
		}
		setTrimmed(&user.Name, in.Name)
		setTrimmed(&user.Surname, in.Surname)
		setTrimmed(&user.Gender, in.Gender)
		setTrimmed(&user.Phone, in.Phone)
		setTrimmed(&user.Education, in.Education)

		if user.Name == "" || user.Surname == "" {
			return invalid("name", "name and surname are required")
		}

		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, duplicate(err, "nickname", "is already taken")
	}

	return &user, nil
}

// TouchLastSeen records activity without touching the search index
func TouchLastSeen(ctx context.Context, st *database.Store, userID uint64) error {
	return st.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", userID).
		UpdateColumn("last_seen", time.Now().UTC()).Error
}

// normalizeEmail is the stored form of an email address
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
