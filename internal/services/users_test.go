package services

import (
	"context"
	"testing"

	"github.com/localnerve/buildnet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() RegisterInput {
	return RegisterInput{
		Nickname: "builder",
		Email:    "Builder@Example.com",
		Name:     "Bob",
		Surname:  "Mason",
		Password: "Str0ngPassword",
	}
}

func TestRegisterUserHashesPassword(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()

	user, err := RegisterUser(ctx, st, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "builder@example.com", user.Email)
	assert.NotEqual(t, "Str0ngPassword", user.PasswordHash)
	assert.True(t, user.CheckPassword("Str0ngPassword"))
	assert.False(t, user.CheckPassword("str0ngpassword"))
	assert.False(t, user.Admin)

	doc, ok := index.Document("users", user.UserID)
	require.True(t, ok)
	assert.Equal(t, "builder", doc["nickname"])
	assert.NotContains(t, doc, "email")
	assert.NotContains(t, doc, "password_hash")

	authenticated, err := Authenticate(ctx, st, "builder", "Str0ngPassword")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, authenticated.UserID)

	_, err = Authenticate(ctx, st, "builder", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = Authenticate(ctx, st, "nobody", "Str0ngPassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterUserValidation(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	testutil.User(t, st, "taken")

	tests := []struct {
		name   string
		modify func(*RegisterInput)
		field  string
	}{
		{name: "empty nickname", modify: func(in *RegisterInput) { in.Nickname = " " }, field: "nickname"},
		{name: "taken nickname", modify: func(in *RegisterInput) { in.Nickname = "taken" }, field: "nickname"},
		{name: "taken email", modify: func(in *RegisterInput) { in.Email = "taken@example.com" }, field: "email"},
		{name: "bad email", modify: func(in *RegisterInput) { in.Email = "not-an-email" }, field: "email"},
		{name: "short password", modify: func(in *RegisterInput) { in.Password = "Ab1" }, field: "password"},
		{name: "weak password", modify: func(in *RegisterInput) { in.Password = "alllowercase1" }, field: "password"},
		{name: "missing name", modify: func(in *RegisterInput) { in.Name = "" }, field: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.modify(&in)

			_, err := RegisterUser(ctx, st, in)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	st, index := testutil.NewStore(t)
	ctx := context.Background()
	user := testutil.User(t, st, "mason")
	testutil.User(t, st, "carpenter")

	description := "Stone walls since 1999"
	linkedin := "https://www.linkedin.com/in/mason"
	updated, err := UpdateProfile(ctx, st, user.UserID, ProfileInput{
		Description: &description,
		Linkedin:    &linkedin,
	})
	require.NoError(t, err)
	assert.Equal(t, description, updated.Description)
	assert.Equal(t, linkedin, updated.Linkedin)

	doc, ok := index.Document("users", user.UserID)
	require.True(t, ok)
	assert.Equal(t, description, doc["description"])

	taken := "carpenter"
	_, err = UpdateProfile(ctx, st, user.UserID, ProfileInput{Nickname: &taken})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "nickname", validation.Field)

	badLink := "https://example.com/me"
	_, err = UpdateProfile(ctx, st, user.UserID, ProfileInput{Linkedin: &badLink})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "linkedin", validation.Field)

	_, err = UpdateProfile(ctx, st, user.UserID+100, ProfileInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadPrincipal(t *testing.T) {
	st, _ := testutil.NewStore(t)
	ctx := context.Background()
	founder := testutil.User(t, st, "founder")
	loner := testutil.User(t, st, "loner")
	company, employee := testutil.Company(t, st, founder, "Acme")

	p, err := LoadPrincipal(ctx, st, founder.UserID)
	require.NoError(t, err)
	assert.Equal(t, company.CompanyID, p.CompanyID)
	assert.Equal(t, employee.EmployeeID, p.EmployeeID)
	assert.True(t, p.CompanyAdmin)

	p, err = LoadPrincipal(ctx, st, loner.UserID)
	require.NoError(t, err)
	assert.False(t, p.Employed())

	_, err = LoadPrincipal(ctx, st, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
