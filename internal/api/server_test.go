package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/vytor/escaperoom/internal/auth"
	"github.com/vytor/escaperoom/internal/catalog"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/ranking"
	"github.com/vytor/escaperoom/internal/repository/sqlite"
	"github.com/vytor/escaperoom/internal/services"
	"github.com/vytor/escaperoom/internal/testutil"
)

type fakeHealth struct{ err error }

func (f fakeHealth) Healthy(context.Context) error { return f.err }

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type ServerSuite struct {
	suite.Suite
	db      *sql.DB
	server  *Server
	handler http.Handler
}

func (s *ServerSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())

	timed := testutil.Puzzle(1, "Cryptography")
	timed.Title = "Caesar"
	timed.TimeLimitSeconds = testutil.IntPtr(600)
	timed.Hints = []models.Hint{{Text: "shift by three", PointDeduction: 20}}
	cat, err := catalog.New(
		[]models.Puzzle{timed, testutil.Puzzle(2, "Hashing")},
		[]models.Achievement{{ID: "first_steps", Title: "First Steps", PointsBonus: 10, Rule: models.FirstCompletion{}}},
	)
	s.Require().NoError(err)

	profiles := sqlite.NewProfileRepository(s.db)
	progress := services.NewProgressService(cat, profiles, sqlite.NewAttemptRepository(s.db), sqlite.NewProgressRepository(s.db))

	s.server = &Server{
		Progress: progress,
		Accounts: services.NewAccountService(sqlite.NewAccountRepository(s.db), auth.NewBcryptHasher(bcrypt.MinCost), progress),
		Ranking:  ranking.NewAggregator(profiles, nil),
		Catalog:  cat,
		Health:   fakeHealth{},
	}
	s.handler = s.server.Routes()
}

func (s *ServerSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ServerSuite) do(method, path, playerID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			s.Require().NoError(json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if playerID != "" {
		req.Header.Set(playerHeader, playerID)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *ServerSuite) assertError(rec *httptest.ResponseRecorder, status int, code string) {
	s.Assert().Equal(status, rec.Code, rec.Body.String())
	var body errorBody
	s.decode(rec, &body)
	s.Assert().Equal(code, body.Error.Code)
}

func (s *ServerSuite) login() string {
	rec := s.do(http.MethodPost, "/api/auth/register", "", credentialsRequest{Username: "alice", Password: "correct horse"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/auth/login", "", credentialsRequest{Username: "alice", Password: "correct horse"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp authResponse
	s.decode(rec, &resp)
	s.Require().NotEmpty(resp.PlayerID)
	return resp.PlayerID
}

func (s *ServerSuite) TestHealthAndReady() {
	s.Assert().Equal(http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
	s.Assert().Equal(http.StatusOK, s.do(http.MethodGet, "/ready", "", nil).Code)

	s.server.Health = fakeHealth{err: stderrors.New("database is closed")}
	s.handler = s.server.Routes()
	s.Assert().Equal(http.StatusServiceUnavailable, s.do(http.MethodGet, "/ready", "", nil).Code)
}

func (s *ServerSuite) TestRequestIDHeader() {
	rec := s.do(http.MethodGet, "/health", "", nil)
	s.Assert().NotEmpty(rec.Header().Get("X-Request-ID"))
	s.Assert().Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func (s *ServerSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/puzzles", nil)
	req.Header.Set("Origin", "https://game.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Assert().Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func (s *ServerSuite) TestPuzzlesHideAnswers() {
	rec := s.do(http.MethodGet, "/api/puzzles", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Assert().NotContains(rec.Body.String(), `"answer"`)
	s.Assert().NotContains(rec.Body.String(), "shift by three")

	var puzzles []puzzleSummary
	s.decode(rec, &puzzles)
	s.Require().Len(puzzles, 2)
	s.Assert().Equal("Caesar", puzzles[0].Title)
	s.Assert().Equal(1, puzzles[0].HintCount)
}

func (s *ServerSuite) TestAchievements() {
	rec := s.do(http.MethodGet, "/api/achievements", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var list []achievementView
	s.decode(rec, &list)
	s.Require().Len(list, 1)
	s.Assert().Equal("first_completion", list[0].Requirement)
}

func (s *ServerSuite) TestMissingPlayerHeader() {
	s.assertError(s.do(http.MethodGet, "/api/me", "", nil), http.StatusUnauthorized, "UNAUTHORIZED")
}

func (s *ServerSuite) TestAuthErrors() {
	s.login()

	rec := s.do(http.MethodPost, "/api/auth/register", "", credentialsRequest{Username: "ALICE", Password: "whatever123"})
	s.assertError(rec, http.StatusConflict, "CONFLICT")

	rec = s.do(http.MethodPost, "/api/auth/login", "", credentialsRequest{Username: "alice", Password: "nope"})
	s.assertError(rec, http.StatusUnauthorized, "UNAUTHORIZED")

	rec = s.do(http.MethodPost, "/api/auth/register", "", `{"username":`)
	s.assertError(rec, http.StatusBadRequest, "BAD_REQUEST")
}

func (s *ServerSuite) TestAttemptFlow() {
	player := s.login()

	rec := s.do(http.MethodGet, "/api/me", player, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/attempts", player, startAttemptRequest{PuzzleID: 1})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var attempt models.Attempt
	s.decode(rec, &attempt)
	s.Assert().Equal(models.AttemptActive, attempt.Status)

	path := "/api/attempts/" + itoa(attempt.ID)

	rec = s.do(http.MethodPost, path+"/hints", player, map[string]int{"hint_index": 0})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Assert().Contains(rec.Body.String(), "shift by three")

	rec = s.do(http.MethodPost, path+"/hints", player, map[string]int{"hint_index": 0})
	s.assertError(rec, http.StatusConflict, "HINT_ALREADY_USED")

	rec = s.do(http.MethodPost, path+"/complete", "mallory", map[string]bool{"succeeded": true})
	s.assertError(rec, http.StatusNotFound, "NOT_FOUND")

	rec = s.do(http.MethodPost, path+"/answer", player, answerRequest{Answer: " ANSWER "})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var res models.CompletionResult
	s.decode(rec, &res)
	s.Assert().Equal(models.AttemptSucceeded, res.Status)
	s.Assert().Greater(res.PointsEarned, 80)
	s.Require().Len(res.NewAchievements, 1)

	rec = s.do(http.MethodPost, path+"/complete", player, map[string]bool{"succeeded": true})
	s.assertError(rec, http.StatusConflict, "INVALID_STATE")

	rec = s.do(http.MethodPost, path+"/expire", player, nil)
	s.assertError(rec, http.StatusConflict, "INVALID_STATE")

	rec = s.do(http.MethodGet, "/api/me/attempts", player, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var attempts []models.Attempt
	s.decode(rec, &attempts)
	s.Assert().Len(attempts, 1)

	rec = s.do(http.MethodGet, "/api/me/stats", player, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var stats models.PlayerStats
	s.decode(rec, &stats)
	s.Assert().Equal(1, stats.TotalPuzzlesCompleted)
	s.Assert().Equal(100, stats.Accuracy)

	rec = s.do(http.MethodGet, "/api/me/recommendations?limit=5", player, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var recs []puzzleSummary
	s.decode(rec, &recs)
	s.Require().Len(recs, 1)
	s.Assert().Equal(2, recs[0].ID)

	rec = s.do(http.MethodGet, "/api/leaderboard?refresh=true", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var board []models.RankingEntry
	s.decode(rec, &board)
	s.Require().Len(board, 1)
	s.Assert().Equal(player, board[0].PlayerID)
	s.Assert().Equal(1, board[0].Rank)

	rec = s.do(http.MethodGet, "/api/leaderboard/"+player, "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var rank models.PlayerRank
	s.decode(rec, &rank)
	s.Assert().Equal(1, rank.TotalPlayers)
	s.Assert().Equal(100.0, rank.Percentile)
}

func (s *ServerSuite) TestAttemptValidation() {
	player := s.login()

	s.assertError(s.do(http.MethodPost, "/api/attempts", player, startAttemptRequest{}), http.StatusBadRequest, "VALIDATION_ERROR")
	s.assertError(s.do(http.MethodPost, "/api/attempts", player, startAttemptRequest{PuzzleID: 42}), http.StatusNotFound, "NOT_FOUND")
	s.assertError(s.do(http.MethodPost, "/api/attempts/abc/hints", player, nil), http.StatusBadRequest, "BAD_REQUEST")
	s.assertError(s.do(http.MethodPost, "/api/attempts/99/complete", player, map[string]bool{"succeeded": true}), http.StatusNotFound, "NOT_FOUND")

	rec := s.do(http.MethodPost, "/api/attempts", player, startAttemptRequest{PuzzleID: 2})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var attempt models.Attempt
	s.decode(rec, &attempt)
	path := "/api/attempts/" + itoa(attempt.ID)

	s.assertError(s.do(http.MethodPost, path+"/complete", player, `{}`), http.StatusBadRequest, "VALIDATION_ERROR")
	s.assertError(s.do(http.MethodPost, path+"/hints", player, `{}`), http.StatusBadRequest, "VALIDATION_ERROR")
	s.assertError(s.do(http.MethodPost, path+"/hints", player, `{"hint_index":0,"extra":1}`), http.StatusBadRequest, "BAD_REQUEST")
	s.assertError(s.do(http.MethodPost, path+"/expire", player, nil), http.StatusConflict, "INVALID_STATE")
	s.assertError(s.do(http.MethodPost, "/api/attempts", player, startAttemptRequest{PuzzleID: 2}), http.StatusConflict, "INVALID_STATE")
}

func (s *ServerSuite) TestSessionTimeAndEvaluate() {
	player := s.login()

	rec := s.do(http.MethodPost, "/api/me/session-time", player, sessionTimeRequest{Seconds: 90})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var view models.ProfileView
	s.decode(rec, &view)
	s.Assert().Equal(90.0, view.TimePlayedSeconds)

	s.assertError(s.do(http.MethodPost, "/api/me/session-time", player, sessionTimeRequest{Seconds: -1}), http.StatusBadRequest, "VALIDATION_ERROR")

	rec = s.do(http.MethodPost, "/api/me/achievements/evaluate", player, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Assert().JSONEq(`{"unlocked":[]}`, rec.Body.String())
}

func (s *ServerSuite) TestLeaderboardErrors() {
	s.assertError(s.do(http.MethodGet, "/api/leaderboard?top=many", "", nil), http.StatusBadRequest, "BAD_REQUEST")
	s.assertError(s.do(http.MethodGet, "/api/leaderboard?refresh=maybe", "", nil), http.StatusBadRequest, "BAD_REQUEST")
	s.assertError(s.do(http.MethodGet, "/api/leaderboard/nobody", "", nil), http.StatusNotFound, "NOT_FOUND")

	rec := s.do(http.MethodGet, "/api/leaderboard", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Assert().Equal("[]", strings.TrimSpace(rec.Body.String()))
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}
