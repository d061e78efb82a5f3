package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the password of every fixture user
const Password = "Buildn3tPass"

var fixtureHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

func create(t testing.TB, st *database.Store, value any) {
	t.Helper()
	require.NoError(t, st.Transaction(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(value).Error
	}))
}

// User registers a user named nickname
func User(t testing.TB, st *database.Store, nickname string) *models.User {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		Nickname:     nickname,
		Email:        nickname + "@example.com",
		Name:         nickname,
		Surname:      "Tester",
		PasswordHash: fixtureHash,
		LastSeen:     now,
	}
	create(t, st, user)
	return user
}

// Company founds a company whose administrator is founder
func Company(t testing.TB, st *database.Store, founder *models.User, name string) (*models.Company, *models.Employee) {
	t.Helper()
	company := &models.Company{
		Name:        name,
		Description: models.Text(fmt.Sprintf("%s builds things", name)),
	}
	create(t, st, company)
	return company, Hire(t, st, company, founder, true)
}

// Hire makes user an employee of company
func Hire(t testing.TB, st *database.Store, company *models.Company, user *models.User, admin bool) *models.Employee {
	t.Helper()
	employee := &models.Employee{
		UserID:    user.UserID,
		CompanyID: company.CompanyID,
		Position:  "Builder",
		Admin:     admin,
		Joined:    time.Now().UTC(),
	}
	create(t, st, employee)
	return employee
}

// Build registers a build created by creator, contracted by contractor when it is not nil
func Build(t testing.TB, st *database.Store, creator *models.User, name string, contractor *models.Company) *models.Build {
	t.Helper()
	build := &models.Build{
		Name:          name,
		Specification: models.Text("A " + name),
		Category:      "housing",
		Worth:         100000,
		Place:         "Springfield",
		PostDate:      time.Now().UTC(),
		CreatorID:     creator.UserID,
	}
	if contractor != nil {
		build.ContractorID = &contractor.CompanyID
	}
	create(t, st, build)
	return build
}

// Post writes a post by author at the given time. opts adjust the post before it is saved.
func Post(t testing.TB, st *database.Store, author *models.User, body string, at time.Time, opts ...func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{
		Body:      models.Text(body),
		AuthorID:  author.UserID,
		Timestamp: at.UTC(),
	}
	for _, opt := range opts {
		opt(post)
	}
	create(t, st, post)
	return post
}

// OnBuild places a post on the forum of build
func OnBuild(build *models.Build, private bool) func(*models.Post) {
	return func(p *models.Post) {
		p.BuildID = &build.BuildID
		p.PrivateCompany = private
	}
}

// OnCompany places a post on the forum of company
func OnCompany(company *models.Company, private bool) func(*models.Post) {
	return func(p *models.Post) {
		p.CompanyID = &company.CompanyID
		p.PrivateCompany = private
	}
}

// Follow makes follower follow followed
func Follow(t testing.TB, st *database.Store, follower, followed *models.User) {
	t.Helper()
	require.NoError(t, st.Transaction(context.Background(), func(tx *gorm.DB) error {
		_, err := database.AddFollow(tx, follower.UserID, followed.UserID)
		return err
	}))
}

// Offer sends a job offer from sender's company to recipient
func Offer(t testing.TB, st *database.Store, sender *models.Employee, recipient *models.User, position string) *models.JobApp {
	t.Helper()
	offer := &models.JobApp{
		SenderID:    sender.EmployeeID,
		RecipientID: recipient.UserID,
		CompanyID:   sender.CompanyID,
		Position:    position,
		Timestamp:   time.Now().UTC(),
	}
	create(t, st, offer)
	return offer
}
