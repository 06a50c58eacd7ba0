package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/repository"
	"github.com/vytor/escaperoom/internal/repository/sqlite"
	"github.com/vytor/escaperoom/internal/testutil"
)

type AccountRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.AccountRepository
}

func (s *AccountRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewAccountRepository(s.db)
}

func (s *AccountRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *AccountRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Create(ctx, models.Account{PlayerID: "p1", Username: "Alice", PasswordHash: "hash"}))

	a, err := s.repo.GetByUsername(ctx, "alice")
	s.Require().NoError(err)
	s.Require().NotNil(a, "usernames are case-insensitive")
	s.Assert().Equal("p1", a.PlayerID)
	s.Assert().Equal("hash", a.PasswordHash)
	s.Assert().Nil(a.LastLoginAt)

	login := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s.Require().NoError(s.repo.UpdateLastLogin(ctx, "p1", login))

	a, err = s.repo.GetByUsername(ctx, "Alice")
	s.Require().NoError(err)
	s.Require().NotNil(a.LastLoginAt)
	s.Assert().WithinDuration(login, *a.LastLoginAt, time.Second)
}

func (s *AccountRepositorySuite) TestCreate_DuplicateUsername() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Create(ctx, models.Account{PlayerID: "p1", Username: "alice", PasswordHash: "x"}))

	err := s.repo.Create(ctx, models.Account{PlayerID: "p2", Username: "ALICE", PasswordHash: "y"})
	s.Assert().ErrorIs(err, repository.ErrDuplicate)
}

func (s *AccountRepositorySuite) TestGet_Unknown() {
	a, err := s.repo.GetByUsername(context.Background(), "ghost")
	s.Require().NoError(err)
	s.Assert().Nil(a)
}

func TestAccountRepositorySuite(t *testing.T) {
	suite.Run(t, new(AccountRepositorySuite))
}
