package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/api/middleware"
	"github.com/phrazzld/mastery-api/internal/domain"
	"github.com/phrazzld/mastery-api/internal/mocks"
	"github.com/phrazzld/mastery-api/internal/service"
	"github.com/phrazzld/mastery-api/internal/service/practice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefaultLimit = 10

type testAPI struct {
	learner  uuid.UUID
	practice *mocks.MockPracticeService
	export   *mocks.MockExportService
	progress *mocks.MockProgressService
	ledger   *mocks.MockLedgerService
	history  *mocks.MockHistoryService
	router   http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := &testAPI{
		learner:  uuid.New(),
		practice: &mocks.MockPracticeService{},
		export:   &mocks.MockExportService{},
		progress: &mocks.MockProgressService{},
		ledger:   &mocks.MockLedgerService{},
		history:  &mocks.MockHistoryService{},
	}

	handlers := Handlers{
		Practice: NewPracticeHandler(a.practice, a.export, testDefaultLimit, log),
		Progress: NewProgressHandler(a.progress, log),
		Mistakes: NewMistakeHandler(a.ledger, log),
		History:  NewHistoryHandler(a.history, log),
	}
	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Route("/api", Routes(handlers, middleware.NewAuthMiddleware(mocks.NewMockJWTServiceFor(a.learner))))
	a.router = r
	return a
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer test-token")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/masteries", nil)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.TraceIDHeader))
}

func TestPracticeHandler_GetSchedule(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults and returns the composition", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.practice.GetScheduledWordsFn = func(
			_ context.Context, learnerID uuid.UUID, textID int64, itemType domain.ItemType, limit int,
		) (*practice.Composition, error) {
			assert.Equal(t, a.learner, learnerID)
			assert.Equal(t, int64(7), textID)
			assert.Equal(t, domain.ItemTypeWord, itemType)
			assert.Equal(t, testDefaultLimit, limit)
			return &practice.Composition{
				Items: []domain.ScheduledItem{
					{ID: 3, Content: "chat", Type: domain.ItemTypeWord, MasteryLevel: 2},
					{ID: 1, Content: "le", Type: domain.ItemTypeWord, IsNew: true},
				},
				NewCount:    1,
				ReviewCount: 1,
			}, nil
		}

		rr := a.do(t, http.MethodGet, "/api/texts/7/schedule", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			Words []struct {
				ID    int64 `json:"id"`
				IsNew bool  `json:"is_new"`
			} `json:"words"`
			NewCount    int `json:"new_count"`
			ReviewCount int `json:"review_count"`
		}
		decodeBody(t, rr, &body)
		require.Len(t, body.Words, 2)
		assert.Equal(t, int64(3), body.Words[0].ID)
		assert.True(t, body.Words[1].IsNew)
		assert.Equal(t, 1, body.NewCount)
		assert.Equal(t, 1, body.ReviewCount)
	})

	t.Run("passes explicit type and limit", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		called := false
		a.practice.GetScheduledWordsFn = func(
			_ context.Context, _ uuid.UUID, _ int64, itemType domain.ItemType, limit int,
		) (*practice.Composition, error) {
			called = true
			assert.Equal(t, domain.ItemTypeSentence, itemType)
			assert.Equal(t, 0, limit)
			return &practice.Composition{Items: []domain.ScheduledItem{}}, nil
		}

		rr := a.do(t, http.MethodGet, "/api/texts/7/schedule?type=sentence&limit=0", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, called)
	})

	t.Run("error mapping", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			path    string
			err     error
			status  int
			message string
		}{
			{"bad text id", "/api/texts/abc/schedule", nil, http.StatusBadRequest, "Invalid ID"},
			{"bad type", "/api/texts/1/schedule?type=novel", nil, http.StatusBadRequest, "Invalid item type"},
			{"bad limit", "/api/texts/1/schedule?limit=-2", nil, http.StatusBadRequest, "Invalid request"},
			{
				"unsegmented text", "/api/texts/1/schedule", service.ErrNothingToPractice,
				http.StatusConflict, "Nothing to practice, segment the text first",
			},
			{
				"storage failure", "/api/texts/1/schedule",
				service.NewServiceError("get_scheduled_words", "failed", assert.AnError),
				http.StatusInternalServerError, "Failed to compose schedule",
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				a := newTestAPI(t)
				a.practice.GetScheduledWordsFn = func(
					context.Context, uuid.UUID, int64, domain.ItemType, int,
				) (*practice.Composition, error) {
					return nil, tt.err
				}

				rr := a.do(t, http.MethodGet, tt.path, "")
				assert.Equal(t, tt.status, rr.Code)
				assert.Contains(t, rr.Body.String(), tt.message)
				assert.Contains(t, rr.Body.String(), "trace_id")
			})
		}
	})
}

func newSpacedSession(t *testing.T, learner uuid.UUID, resumed bool) practice.Session {
	t.Helper()
	p, err := domain.NewSessionProgress(learner, 7, domain.ItemTypeWord, domain.PracticeModeSpaced,
		[]domain.ScheduledItem{{ID: 1, Content: "un", Type: domain.ItemTypeWord, IsNew: true}},
		0, time.Now())
	require.NoError(t, err)
	return &practice.SpacedRepetitionSession{Progress: *p, NewCount: 1, WasResumed: resumed}
}

func TestPracticeHandler_StartSession(t *testing.T) {
	t.Parallel()

	t.Run("empty body starts a default session", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.practice.StartSessionFn = func(_ context.Context, _ uuid.UUID, req practice.StartRequest) (practice.Session, error) {
			assert.Equal(t, int64(7), req.TextID)
			assert.Equal(t, domain.ItemTypeWord, req.ItemType)
			assert.Equal(t, testDefaultLimit, req.Limit)
			assert.Empty(t, req.Mode)
			assert.False(t, req.Restart)
			return newSpacedSession(t, a.learner, false), nil
		}

		rr := a.do(t, http.MethodPost, "/api/texts/7/sessions", "")
		require.Equal(t, http.StatusCreated, rr.Code)

		var body SessionResponse
		decodeBody(t, rr, &body)
		assert.Equal(t, domain.PracticeModeSpaced, body.Mode)
		assert.False(t, body.Resumed)
		require.NotNil(t, body.Current)
		assert.Equal(t, "un", body.Current.Content)
		require.NotNil(t, body.NewCount)
		assert.Equal(t, 1, *body.NewCount)
	})

	t.Run("resumed session returns 200 without counts", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.practice.StartSessionFn = func(_ context.Context, _ uuid.UUID, req practice.StartRequest) (practice.Session, error) {
			assert.Equal(t, 0, req.Limit)
			assert.Equal(t, domain.PracticeModeLegacy, req.Mode)
			assert.True(t, req.Restart)
			return newSpacedSession(t, a.learner, true), nil
		}

		rr := a.do(t, http.MethodPost, "/api/texts/7/sessions",
			`{"mode":"legacy","limit":0,"restart":true}`)
		require.Equal(t, http.StatusOK, rr.Code)

		var body SessionResponse
		decodeBody(t, rr, &body)
		assert.True(t, body.Resumed)
		assert.Nil(t, body.NewCount)
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		rr := a.do(t, http.MethodPost, "/api/texts/7/sessions", `{"mode":"cram"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid mode")
	})

	t.Run("nothing due", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.practice.StartSessionFn = func(context.Context, uuid.UUID, practice.StartRequest) (practice.Session, error) {
			return nil, service.ErrNothingDue
		}

		rr := a.do(t, http.MethodPost, "/api/texts/7/sessions", "{}")
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "Nothing due for practice")
	})
}

func TestPracticeHandler_AnswerInSession(t *testing.T) {
	t.Parallel()

	t.Run("forwards the answer", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.practice.AnswerInSessionFn = func(_ context.Context, _ uuid.UUID, req practice.AnswerRequest) (*practice.AnswerResult, error) {
			assert.Equal(t, int64(7), req.TextID)
			assert.Equal(t, domain.ItemTypePhrase, req.ItemType)
			assert.Equal(t, int64(12), req.ItemID)
			assert.False(t, req.Correct)
			assert.Equal(t, testDefaultLimit, req.Limit)
			assert.Empty(t, req.Mode)
			return &practice.AnswerResult{Completed: true}, nil
		}

		rr := a.do(t, http.MethodPost, "/api/texts/7/sessions/answer?type=phrase", `{"item_id":12,"correct":false}`)
		require.Equal(t, http.StatusOK, rr.Code)

		var body practice.AnswerResult
		decodeBody(t, rr, &body)
		assert.True(t, body.Completed)
	})

	t.Run("correct is required", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		rr := a.do(t, http.MethodPost, "/api/texts/7/sessions/answer", `{"item_id":12}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid correct: required field")
	})

	t.Run("stale progress", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.practice.AnswerInSessionFn = func(context.Context, uuid.UUID, practice.AnswerRequest) (*practice.AnswerResult, error) {
			return nil, service.ErrStaleProgress
		}

		rr := a.do(t, http.MethodPost, "/api/texts/7/sessions/answer", `{"correct":true}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("forwards start parameters for rebuilding", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.practice.AnswerInSessionFn = func(_ context.Context, _ uuid.UUID, req practice.AnswerRequest) (*practice.AnswerResult, error) {
			assert.Equal(t, domain.PracticeModeLegacy, req.Mode)
			assert.Equal(t, 0, req.Limit)
			return &practice.AnswerResult{}, nil
		}

		rr := a.do(t, http.MethodPost, "/api/texts/7/sessions/answer",
			`{"item_id":3,"correct":true,"mode":"legacy","limit":0}`)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = a.do(t, http.MethodPost, "/api/texts/7/sessions/answer", `{"correct":true,"mode":"cram"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPracticeHandler_Masteries(t *testing.T) {
	t.Parallel()

	t.Run("answer", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.practice.UpdateWordMasteryFn = func(_ context.Context, _ uuid.UUID, req practice.UpdateRequest) (*domain.WordMastery, error) {
			assert.Equal(t, int64(99), req.ItemID)
			assert.Equal(t, "chat", req.Content)
			assert.True(t, req.Correct)
			assert.Equal(t, int64(4), req.TextID)
			return &domain.WordMastery{ItemID: 99, MasteryLevel: 1, EaseFactor: 2.42, IntervalDays: 1}, nil
		}

		rr := a.do(t, http.MethodPost, "/api/masteries/99/answer",
			`{"content":"chat","item_type":"word","correct":true,"text_id":4}`)
		require.Equal(t, http.StatusOK, rr.Code)

		var body domain.WordMastery
		decodeBody(t, rr, &body)
		assert.Equal(t, 1, body.MasteryLevel)
	})

	t.Run("answer rejects bad payloads", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		for _, payload := range []string{
			`{"content":"chat","item_type":"word"}`,
			`{"content":"chat","item_type":"novel","correct":true}`,
			`{"content":"chat","item_type":"word","correct":true,"extra":1}`,
			`not json`,
		} {
			rr := a.do(t, http.MethodPost, "/api/masteries/99/answer", payload)
			assert.Equal(t, http.StatusBadRequest, rr.Code, payload)
		}
	})

	t.Run("list filters by type", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.practice.GetWordMasteriesFn = func(_ context.Context, _ uuid.UUID, itemType domain.ItemType) ([]domain.WordMastery, error) {
			assert.Equal(t, domain.ItemTypePhrase, itemType)
			return []domain.WordMastery{{ItemID: 1}, {ItemID: 2}}, nil
		}

		rr := a.do(t, http.MethodGet, "/api/masteries?type=phrase", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var body MasteriesResponse
		decodeBody(t, rr, &body)
		assert.Len(t, body.Masteries, 2)
	})

	t.Run("export", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.export.ExportMasteriesFn = func(_ context.Context, learnerID uuid.UUID, itemType domain.ItemType) ([]byte, error) {
			assert.Equal(t, a.learner, learnerID)
			assert.Empty(t, itemType)
			return []byte("PK-workbook"), nil
		}

		rr := a.do(t, http.MethodGet, "/api/masteries/export", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, XLSXContentType, rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), ".xlsx")
		assert.Equal(t, "PK-workbook", rr.Body.String())
	})
}

func TestPracticeHandler_Legacy(t *testing.T) {
	t.Parallel()

	t.Run("compose", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.practice.ComposeLegacyFn = func(_ context.Context, _ uuid.UUID, textID int64, words []string) ([]string, error) {
			assert.Equal(t, int64(3), textID)
			return words[1:], nil
		}

		rr := a.do(t, http.MethodPost, "/api/texts/3/legacy", `{"words":["le","chat"]}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"words":["chat"]}`, rr.Body.String())
	})

	t.Run("answer defaults to words", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		called := false
		a.practice.AnswerLegacyFn = func(
			_ context.Context, _ uuid.UUID, textID int64, word string, itemType domain.ItemType, correct bool,
		) error {
			called = true
			assert.Equal(t, int64(3), textID)
			assert.Equal(t, "chat", word)
			assert.Equal(t, domain.ItemTypeWord, itemType)
			assert.False(t, correct)
			return nil
		}

		rr := a.do(t, http.MethodPost, "/api/texts/3/legacy/answer", `{"word":"chat","correct":false}`)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.True(t, called)
	})
}

func TestProgressHandler(t *testing.T) {
	t.Parallel()

	t.Run("get missing progress", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		rr := a.do(t, http.MethodGet, "/api/texts/5/progress", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "No saved progress")
	})

	t.Run("save builds the record for the learner", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		var saved *domain.SessionProgress
		a.progress.SaveProgressFn = func(_ context.Context, p *domain.SessionProgress) error {
			saved = p
			return nil
		}

		rr := a.do(t, http.MethodPut, "/api/texts/5/progress?type=phrase",
			`{"items":[{"id":1,"content":"bon jour","type":"phrase","is_new":true}],"current_index":0}`)
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, saved)
		assert.Equal(t, a.learner, saved.LearnerID)
		assert.Equal(t, int64(5), saved.TextID)
		assert.Equal(t, domain.ItemTypePhrase, saved.ItemType)
		assert.Equal(t, domain.PracticeModeSpaced, saved.Mode)
		assert.Len(t, saved.Items, 1)
	})

	t.Run("save rejects empty items", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		rr := a.do(t, http.MethodPut, "/api/texts/5/progress", `{"items":[]}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		rr := a.do(t, http.MethodDelete, "/api/texts/5/progress", "")
		assert.Equal(t, http.StatusNoContent, rr.Code)

		a.progress.ClearProgressFn = func(context.Context, uuid.UUID, int64, domain.ItemType) error {
			return service.ErrProgressNotFound
		}
		rr = a.do(t, http.MethodDelete, "/api/texts/5/progress", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestMistakeHandler(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.ledger.ListTrackedFn = func(_ context.Context, _ uuid.UUID, itemType domain.ItemType) ([]domain.MistakeEntry, error) {
			assert.Empty(t, itemType)
			return []domain.MistakeEntry{{Text: "chat", ErrorCount: 2, TextIDs: []int64{1, 4}}}, nil
		}

		rr := a.do(t, http.MethodGet, "/api/mistakes", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var body MistakesResponse
		decodeBody(t, rr, &body)
		require.Len(t, body.Mistakes, 1)
		assert.Equal(t, []int64{1, 4}, body.Mistakes[0].TextIDs)
	})

	t.Run("remove", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.ledger.RemoveFn = func(_ context.Context, _ uuid.UUID, text string) error {
			if text == "chien" {
				return service.ErrMistakeNotFound
			}
			assert.Equal(t, "chat noir", text)
			return nil
		}

		assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, "/api/mistakes?text=chat+noir", "").Code)
		assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, "/api/mistakes?text=chien", "").Code)
		assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodDelete, "/api/mistakes", "").Code)
	})
}

func TestHistoryHandler(t *testing.T) {
	t.Parallel()

	t.Run("list passes the limit", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.history.ListHistoryFn = func(_ context.Context, _ uuid.UUID, limit int) ([]domain.PracticeHistory, error) {
			assert.Equal(t, 5, limit)
			return []domain.PracticeHistory{{CorrectCount: 3}}, nil
		}

		rr := a.do(t, http.MethodGet, "/api/history?limit=5", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var body HistoryResponse
		decodeBody(t, rr, &body)
		assert.Len(t, body.Histories, 1)
	})

	t.Run("statistics", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		a.history.StatisticsFn = func(context.Context, uuid.UUID) (*domain.PracticeStatistics, error) {
			return &domain.PracticeStatistics{TotalPractices: 4, BestAccuracy: 100}, nil
		}

		rr := a.do(t, http.MethodGet, "/api/statistics", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var body domain.PracticeStatistics
		decodeBody(t, rr, &body)
		assert.Equal(t, 4, body.TotalPractices)
	})
}
