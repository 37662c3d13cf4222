package v1_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-whatscv-backend/internal/domain"
	"go-whatscv-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetCandidateEndpoint(t *testing.T) {
	t.Run("Found returns detail envelope", func(t *testing.T) {
		candidateUC := new(MockCandidateUsecase)
		name := "Jane Doe"
		detail := &domain.CandidateDetail{}
		detail.ID = 7
		detail.FullName = &name
		candidateUC.On("GetCandidate", mock.Anything, int64(7)).Return(detail, nil)

		router := newTestRouter(new(MockIngestionUsecase), candidateUC)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/candidates/7", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success":true`)
		assert.Contains(t, w.Body.String(), "Jane Doe")
	})

	t.Run("Unknown id maps to 404", func(t *testing.T) {
		candidateUC := new(MockCandidateUsecase)
		candidateUC.On("GetCandidate", mock.Anything, int64(99)).
			Return(nil, apperror.NotFound("Candidate not found"))

		router := newTestRouter(new(MockIngestionUsecase), candidateUC)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/candidates/99", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Candidate not found")
	})

	t.Run("Non-numeric id maps to 400", func(t *testing.T) {
		candidateUC := new(MockCandidateUsecase)
		router := newTestRouter(new(MockIngestionUsecase), candidateUC)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/candidates/abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		candidateUC.AssertNotCalled(t, "GetCandidate", mock.Anything, mock.Anything)
	})
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("Query params map onto the filter", func(t *testing.T) {
		candidateUC := new(MockCandidateUsecase)
		candidateUC.On("Search", mock.Anything, domain.SearchFilter{
			Skills:         "python,sql",
			EducationLevel: "bachelor",
			City:           "Boston",
		}).Return(&domain.SearchResult{Count: 0, Items: []domain.CandidateDetail{}}, nil)

		router := newTestRouter(new(MockIngestionUsecase), candidateUC)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/v1/candidates/search?skills=python,sql&education_level=bachelor&city=Boston", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":0`)
		candidateUC.AssertExpectations(t)
	})

	t.Run("No filters still searches", func(t *testing.T) {
		candidateUC := new(MockCandidateUsecase)
		candidateUC.On("Search", mock.Anything, domain.SearchFilter{}).
			Return(&domain.SearchResult{Count: 1, Items: []domain.CandidateDetail{{}}}, nil)

		router := newTestRouter(new(MockIngestionUsecase), candidateUC)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/candidates/search", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":1`)
	})
}
