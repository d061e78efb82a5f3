package services

import (
	"context"
	"testing"

	"github.com/localnerve/buildnet/internal/access"
	"github.com/localnerve/buildnet/internal/testutil"
	"github.com/localnerve/buildnet/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffersFromTwoEmployeesAgree(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	colleague := testutil.User(t, st, "colleague")
	candidate := testutil.User(t, st, "candidate")
	company, _ := testutil.Company(t, st, founder, "Acme")
	testutil.Hire(t, st, company, colleague, false)

	first, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)
	second, err := LoadPrincipal(ctx, st, colleague.UserID)
	require.NoError(t, err)

	_, err = SendOffer(ctx, st, first, candidate.UserID, OfferInput{Position: "Foreman", Salary: types.Of(int64(50000))})
	require.NoError(t, err)
	_, err = SendOffer(ctx, st, second, candidate.UserID, OfferInput{Position: "Carpenter"})
	require.NoError(t, err)

	received, err := ReceivedOffers(ctx, st, candidate.UserID)
	require.NoError(t, err)
	assert.Len(t, received, 2)

	fromFirst, err := OffersFromCompanyTo(ctx, st, first, candidate.UserID)
	require.NoError(t, err)
	fromSecond, err := OffersFromCompanyTo(ctx, st, second, candidate.UserID)
	require.NoError(t, err)
	assert.Len(t, fromFirst, 2)
	assert.Len(t, fromSecond, len(fromFirst))

	sent, err := SentOffers(ctx, st, second)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "Carpenter", sent[0].Position)
}

func TestSendOfferValidation(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	candidate := testutil.User(t, st, "candidate")
	testutil.Company(t, st, founder, "Acme")

	p, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)

	_, err = SendOffer(ctx, st, p, candidate.UserID, OfferInput{Position: " "})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "position", validation.Field)

	_, err = SendOffer(ctx, st, p, candidate.UserID, OfferInput{Position: "Welder", Salary: types.Of(int64(-1))})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "salary", validation.Field)

	_, err = SendOffer(ctx, st, p, candidate.UserID+100, OfferInput{Position: "Welder"})
	assert.ErrorIs(t, err, ErrNotFound)

	unemployed, err := LoadPrincipal(ctx, st, candidate.UserID)
	require.NoError(t, err)
	_, err = SendOffer(ctx, st, unemployed, founder.UserID, OfferInput{Position: "Boss"})
	assert.ErrorIs(t, err, ErrNotEmployed)
}

func TestAcceptOffer(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	candidate := testutil.User(t, st, "candidate")
	company, admin := testutil.Company(t, st, founder, "Acme")
	offer := testutil.Offer(t, st, admin, candidate, "Electrician")

	// Only the recipient can accept
	_, err := AcceptOffer(ctx, st, founder.UserID, offer.JobAppID)
	assert.ErrorIs(t, err, ErrNotFound)

	employee, err := AcceptOffer(ctx, st, candidate.UserID, offer.JobAppID)
	require.NoError(t, err)
	assert.Equal(t, company.CompanyID, employee.CompanyID)
	assert.Equal(t, "Electrician", employee.Position)
	assert.False(t, employee.Admin)

	working, err := IsWorking(ctx, st, company.CompanyID, candidate.UserID)
	require.NoError(t, err)
	assert.True(t, working)

	offers, err := ReceivedOffers(ctx, st, candidate.UserID)
	require.NoError(t, err)
	assert.Empty(t, offers, "the offer is consumed")

	_, err = AcceptOffer(ctx, st, candidate.UserID, offer.JobAppID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptOfferWhileEmployedChangesNothing(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	candidate := testutil.User(t, st, "candidate")
	_, admin := testutil.Company(t, st, founder, "Acme")
	other, _ := testutil.Company(t, st, candidate, "Other")
	offer := testutil.Offer(t, st, admin, candidate, "Electrician")

	_, err := AcceptOffer(ctx, st, candidate.UserID, offer.JobAppID)
	assert.ErrorIs(t, err, ErrAlreadyEmployed)

	offers, err := ReceivedOffers(ctx, st, candidate.UserID)
	require.NoError(t, err)
	assert.Len(t, offers, 1, "the offer survives a failed acceptance")

	working, err := IsWorking(ctx, st, other.CompanyID, candidate.UserID)
	require.NoError(t, err)
	assert.True(t, working)
}

func TestWithdrawOffer(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	candidate := testutil.User(t, st, "candidate")
	_, admin := testutil.Company(t, st, founder, "Acme")
	offer := testutil.Offer(t, st, admin, candidate, "Painter")

	assert.ErrorIs(t, WithdrawOffer(ctx, st, access.Principal{UserID: candidate.UserID}, offer.JobAppID), ErrForbidden)

	p, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)
	require.NoError(t, WithdrawOffer(ctx, st, p, offer.JobAppID))

	offers, err := ReceivedOffers(ctx, st, candidate.UserID)
	require.NoError(t, err)
	assert.Empty(t, offers)
}
