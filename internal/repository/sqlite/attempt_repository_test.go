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

type AttemptRepositorySuite struct {
	suite.Suite
	db       *sql.DB
	attempts repository.AttemptRepository
	progress repository.ProgressRepository
	profiles repository.ProfileRepository
	start    time.Time
}

func (s *AttemptRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.attempts = sqlite.NewAttemptRepository(s.db)
	s.progress = sqlite.NewProgressRepository(s.db)
	s.profiles = sqlite.NewProfileRepository(s.db)
	s.start = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *AttemptRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *AttemptRepositorySuite) startAttempt(playerID string, puzzleID, number int) int64 {
	p, err := s.profiles.Get(context.Background(), playerID)
	s.Require().NoError(err)
	if p == nil {
		p = models.NewPlayerProfile(playerID)
	}
	p.MarkViewed(puzzleID)

	id, err := s.progress.RecordStart(context.Background(), models.Attempt{
		PlayerID:      playerID,
		PuzzleID:      puzzleID,
		AttemptNumber: number,
		StartTime:     s.start,
		Status:        models.AttemptActive,
	}, p)
	s.Require().NoError(err)
	return id
}

func (s *AttemptRepositorySuite) TestRecordStartAndGet() {
	ctx := context.Background()
	id := s.startAttempt("p1", 4, 1)
	s.Assert().Greater(id, int64(0))

	a, err := s.attempts.Get(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(a)
	s.Assert().Equal("p1", a.PlayerID)
	s.Assert().Equal(4, a.PuzzleID)
	s.Assert().Equal(1, a.AttemptNumber)
	s.Assert().Equal(models.AttemptActive, a.Status)
	s.Assert().Nil(a.EndTime)
	s.Assert().WithinDuration(s.start, a.StartTime, time.Second)

	p, err := s.profiles.Get(ctx, "p1")
	s.Require().NoError(err)
	s.Assert().True(p.HasViewed(4), "start and viewed mark are written together")
}

func (s *AttemptRepositorySuite) TestGet_NotFound() {
	a, err := s.attempts.Get(context.Background(), 999)
	s.Require().NoError(err)
	s.Assert().Nil(a)
}

func (s *AttemptRepositorySuite) TestRecordStart_SecondActiveRejected() {
	s.startAttempt("p1", 4, 1)

	_, err := s.progress.RecordStart(context.Background(), models.Attempt{
		PlayerID:      "p1",
		PuzzleID:      4,
		AttemptNumber: 2,
		StartTime:     s.start,
		Status:        models.AttemptActive,
	}, models.NewPlayerProfile("p1"))
	s.Assert().ErrorIs(err, repository.ErrDuplicate)
}

func (s *AttemptRepositorySuite) TestActiveCountAndUpdateHints() {
	ctx := context.Background()
	id := s.startAttempt("p1", 4, 1)

	active, err := s.attempts.Active(ctx, "p1", 4)
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.Assert().Equal(id, active.ID)

	none, err := s.attempts.Active(ctx, "p1", 5)
	s.Require().NoError(err)
	s.Assert().Nil(none)

	n, err := s.attempts.Count(ctx, "p1", 4)
	s.Require().NoError(err)
	s.Assert().Equal(1, n)

	s.Require().NoError(s.attempts.UpdateHints(ctx, id, 1))
	a, err := s.attempts.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(1, a.HintsUsed)
}

func (s *AttemptRepositorySuite) TestRecordCompletion() {
	ctx := context.Background()
	id := s.startAttempt("p1", 4, 1)

	a, err := s.attempts.Get(ctx, id)
	s.Require().NoError(err)

	end := s.start.Add(30 * time.Second)
	a.EndTime = &end
	a.Status = models.AttemptSucceeded
	a.PointsEarned = 90
	a.ElapsedSeconds = 30
	a.HintsUsed = 1

	p, err := s.profiles.Get(ctx, "p1")
	s.Require().NoError(err)
	p.MarkCompleted(4, 30)
	p.AttemptsByPuzzle[4] = 1
	p.RecordSuccess(90)

	s.Require().NoError(s.progress.RecordCompletion(ctx, *a, p))

	got, err := s.attempts.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(models.AttemptSucceeded, got.Status)
	s.Assert().Equal(90, got.PointsEarned)
	s.Require().NotNil(got.EndTime)
	s.Assert().WithinDuration(end, *got.EndTime, time.Second)

	saved, err := s.profiles.Get(ctx, "p1")
	s.Require().NoError(err)
	s.Assert().Equal(90, saved.TotalPoints)
	s.Assert().True(saved.HasCompleted(4))

	// A second completion finds no active row and changes nothing.
	p.RecordSuccess(90)
	err = s.progress.RecordCompletion(ctx, *a, p)
	s.Assert().ErrorIs(err, repository.ErrStaleAttempt)

	saved, err = s.profiles.Get(ctx, "p1")
	s.Require().NoError(err)
	s.Assert().Equal(90, saved.TotalPoints)

	s.Assert().ErrorIs(s.attempts.UpdateHints(ctx, id, 2), repository.ErrStaleAttempt)
}

func (s *AttemptRepositorySuite) TestList_Filters() {
	ctx := context.Background()
	s.startAttempt("p1", 1, 1)
	s.startAttempt("p1", 2, 1)
	s.startAttempt("p2", 1, 1)

	all, err := s.attempts.List(ctx, models.AttemptFilter{})
	s.Require().NoError(err)
	s.Assert().Len(all, 3)

	mine, err := s.attempts.List(ctx, models.AttemptFilter{PlayerID: "p1"})
	s.Require().NoError(err)
	s.Assert().Len(mine, 2)

	puzzle1, err := s.attempts.List(ctx, models.AttemptFilter{PuzzleID: 1})
	s.Require().NoError(err)
	s.Assert().Len(puzzle1, 2)

	active, err := s.attempts.List(ctx, models.AttemptFilter{Status: models.AttemptActive, Limit: 2})
	s.Require().NoError(err)
	s.Assert().Len(active, 2)

	succeeded, err := s.attempts.List(ctx, models.AttemptFilter{Status: models.AttemptSucceeded})
	s.Require().NoError(err)
	s.Assert().Empty(succeeded)
}

func TestAttemptRepositorySuite(t *testing.T) {
	suite.Run(t, new(AttemptRepositorySuite))
}
