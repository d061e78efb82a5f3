// mailer.go
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
	"strings"

	"github.com/localnerve/buildnet/internal/models"
	"github.com/sirupsen/logrus"
)

// Mailer delivers password reset links
type Mailer interface {
	SendPasswordReset(ctx context.Context, user *models.User, token string) error
}

// LogMailer writes reset links to the log instead of sending mail
type LogMailer struct {
	Log     *logrus.Entry
	BaseURL string
}

func (m *LogMailer) SendPasswordReset(_ context.Context, user *models.User, token string) error {
	m.Log.WithFields(logrus.Fields{
		"user_id": user.UserID,
		"email":   user.Email,
		"link":    strings.TrimRight(m.BaseURL, "/") + "/reset_password/" + token,
	}).Info("password reset requested")
	return nil
}
