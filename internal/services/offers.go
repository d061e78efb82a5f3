// offers.go
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
	"time"
	"unicode/utf8"

	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/metrics"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OfferInput is the payload of a job offer
type OfferInput struct {
	Position string                  `json:"position"`
	Salary   types.FlexNumber[int64] `json:"salary"`
}

// SendOffer sends a job offer from the principal's company to recipientID
func SendOffer(ctx context.Context, st *database.Store, p access.Principal, recipientID uint64, in OfferInput) (*models.JobApp, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthorized
	}
	if !p.Employed() {
		return nil, ErrNotEmployed
	}
	if recipientID == p.UserID {
		return nil, invalid("recipient", "cannot send an offer to yourself")
	}

	position := strings.TrimSpace(in.Position)
	if position == "" || utf8.RuneCountInString(position) > 64 {
		return nil, invalid("position", "must be between 1 and 64 characters")
	}
	if in.Salary.Set && in.Salary.Value < 0 {
		return nil, invalid("salary", "must not be negative")
	}

	offer := models.JobApp{
		SenderID:    p.EmployeeID,
		RecipientID: recipientID,
		CompanyID:   p.CompanyID,
		Salary:      in.Salary.Ptr(),
		Position:    position,
		Timestamp:   time.Now().UTC(),
	}

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		found, err := exists(tx, &models.User{}, "user_id = ?", recipientID)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return tx.Create(&offer).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.JobOffers.WithLabelValues("sent").Inc()
	return &offer, nil
}

// OffersFromCompanyTo lists the offers the principal's company has sent to recipientID.
// Unemployed principals see none.
func OffersFromCompanyTo(ctx context.Context, st *database.Store, p access.Principal, recipientID uint64) ([]models.JobApp, error) {
	offers := []models.JobApp{}
	if !p.Employed() {
		return offers, nil
	}

	err := st.DB.WithContext(ctx).
		Preload("Sender.User").
		Where("company_id = ? AND recipient_id = ?", p.CompanyID, recipientID).
		Order("timestamp DESC, job_app_id DESC").
		Find(&offers).Error
	return offers, err
}

// ReceivedOffers lists the offers waiting for userID
func ReceivedOffers(ctx context.Context, st *database.Store, userID uint64) ([]models.JobApp, error) {
	offers := []models.JobApp{}
	err := st.DB.WithContext(ctx).
		Preload("Company").
		Preload("Sender.User").
		Where("recipient_id = ?", userID).
		Order("timestamp DESC, job_app_id DESC").
		Find(&offers).Error
	return offers, err
}

// SentOffers lists the offers sent by the principal
func SentOffers(ctx context.Context, st *database.Store, p access.Principal) ([]models.JobApp, error) {
	offers := []models.JobApp{}
	if !p.Employed() {
		return offers, nil
	}

	err := st.DB.WithContext(ctx).
		Preload("Recipient").
		Where("sender_id = ?", p.EmployeeID).
		Order("timestamp DESC, job_app_id DESC").
		Find(&offers).Error
	return offers, err
}

// WithdrawOffer deletes a pending offer. Its sender and the admins of its company may do so.
func WithdrawOffer(ctx context.Context, st *database.Store, p access.Principal, offerID uint64) error {
	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		var offer models.JobApp
		if err := quiet(tx).First(&offer, "job_app_id = ?", offerID).Error; err != nil {
			return notFound(err)
		}
		if offer.SenderID != p.EmployeeID && !p.AdministersCompany(offer.CompanyID) {
			return ErrForbidden
		}
		return tx.Delete(&offer).Error
	})
	if err != nil {
		return err
	}

	metrics.JobOffers.WithLabelValues("withdrawn").Inc()
	return nil
}

// AcceptOffer consumes an offer: in one transaction the recipient becomes an employee
// of the offering company with the offered position and salary, and the offer is deleted.
func AcceptOffer(ctx context.Context, st *database.Store, userID, offerID uint64) (*models.Employee, error) {
	var employee models.Employee

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		var offer models.JobApp
		err := quiet(tx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&offer, "job_app_id = ?", offerID).Error
		if err != nil {
			return notFound(err)
		}
		if offer.RecipientID != userID {
			return ErrNotFound
		}

		employed, err := exists(tx, &models.Employee{}, "user_id = ?", userID)
		if err != nil {
			return err
		}
		if employed {
			return ErrAlreadyEmployed
		}

		employee = models.Employee{
			UserID:    userID,
			CompanyID: offer.CompanyID,
			Position:  offer.Position,
			Salary:    offer.Salary,
			Joined:    time.Now().UTC(),
		}
		if err := tx.Create(&employee).Error; err != nil {
			return duplicate(err, "user", ErrAlreadyEmployed.Error())
		}

		return tx.Delete(&offer).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.JobOffers.WithLabelValues("accepted").Inc()
	st.Log.WithField("user_id", userID).WithField("company_id", employee.CompanyID).Info("job offer accepted")
	return &employee, nil
}
