package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fund-dashboard-go/internal/portfolio"
	"fund-dashboard-go/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockResolver is a mock implementation of the dashboardResolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context) (portfolio.DashboardView, error) {
	args := m.Called(ctx)
	return args.Get(0).(portfolio.DashboardView), args.Error(1)
}

// MockDispatcher is a mock implementation of the dispatch.ClientInterface.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, mode string) error {
	args := m.Called(ctx, mode)
	return args.Error(0)
}

func setupHandler() (*APIHandler, *MockResolver, *MockDispatcher) {
	resolver := new(MockResolver)
	dispatcher := new(MockDispatcher)
	// nil history store: recording disabled
	return NewAPIHandler(zap.NewNop(), resolver, dispatcher, nil), resolver, dispatcher
}

func TestFundHandler_Get(t *testing.T) {
	t.Run("ReturnsView", func(t *testing.T) {
		// Arrange
		h, resolver, _ := setupHandler()
		resolver.On("Resolve", mock.Anything).Return(portfolio.DashboardView{
			DailyProfit:   120.50,
			HoldingProfit: 300.00,
			TotalProfit:   520.50,
			TotalCost:     1000.00,
			UpdateTime:    "2026-08-24 23:00:00",
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		// Act
		h.FundHandler(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var view portfolio.DashboardView
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
		assert.Equal(t, 120.50, view.DailyProfit)
		assert.Equal(t, 520.50, view.TotalProfit)
	})

	t.Run("DegradesToZerosWithoutConfiguration", func(t *testing.T) {
		// Arrange: nothing configured, the resolver reports the zero view
		// plus the reason.
		h, resolver, _ := setupHandler()
		resolver.On("Resolve", mock.Anything).Return(portfolio.DashboardView{
			UpdateTime: "2026-08-24 23:00:00",
		}, portfolio.ErrNotConfigured)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		// Act
		h.FundHandler(rec, req)

		// Assert: still HTTP 200, all figures zero, timestamp present.
		assert.Equal(t, http.StatusOK, rec.Code)

		var view portfolio.DashboardView
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
		assert.Equal(t, 0.0, view.DailyProfit)
		assert.Equal(t, 0.0, view.HoldingProfit)
		assert.Equal(t, 0.0, view.TotalProfit)
		assert.Equal(t, 0.0, view.TotalCost)
		assert.NotEmpty(t, view.UpdateTime)
	})
}

func TestFundHandler_Post(t *testing.T) {
	t.Run("DispatchesValidMode", func(t *testing.T) {
		// Arrange
		h, _, dispatcher := setupHandler()
		dispatcher.On("Dispatch", mock.Anything, "profit").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mode": "profit"}`))
		rec := httptest.NewRecorder()

		// Act
		h.FundHandler(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp triggerResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "profit", resp.Mode)
		assert.NotEmpty(t, resp.Timestamp)
		dispatcher.AssertExpectations(t)
	})

	t.Run("DefaultsModeOnEmptyBody", func(t *testing.T) {
		// Arrange
		h, _, dispatcher := setupHandler()
		dispatcher.On("Dispatch", mock.Anything, "profit").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()

		// Act
		h.FundHandler(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		dispatcher.AssertExpectations(t)
	})

	t.Run("RejectsUnknownModeWithoutDispatching", func(t *testing.T) {
		// Arrange
		h, _, dispatcher := setupHandler()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mode": "other"}`))
		rec := httptest.NewRecorder()

		// Act
		h.FundHandler(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unsupported mode")
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("RejectsMalformedBody", func(t *testing.T) {
		h, _, dispatcher := setupHandler()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mode": `))
		rec := httptest.NewRecorder()

		h.FundHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("ForwardsUpstreamFailure", func(t *testing.T) {
		// Arrange
		h, _, dispatcher := setupHandler()
		dispatcher.On("Dispatch", mock.Anything, "profit").Return(&upstream.Error{
			Service:    "github",
			StatusCode: http.StatusUnprocessableEntity,
			Body:       `{"message": "No ref found for: main"}`,
		})

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mode": "profit"}`))
		rec := httptest.NewRecorder()

		// Act
		h.FundHandler(rec, req)

		// Assert: the upstream status and body pass through.
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "No ref found")
	})

	t.Run("InternalErrorAnswers500", func(t *testing.T) {
		h, _, dispatcher := setupHandler()
		dispatcher.On("Dispatch", mock.Anything, "profit").Return(assert.AnError)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()

		h.FundHandler(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestFundHandler_MethodNotAllowed(t *testing.T) {
	h, _, _ := setupHandler()

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		req := httptest.NewRequest(method, "/", nil)
		rec := httptest.NewRecorder()

		h.FundHandler(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Contains(t, rec.Body.String(), "method not allowed")
	}
}

func TestHistoryHandler(t *testing.T) {
	t.Run("DisabledStoreAnswersEmptyList", func(t *testing.T) {
		h, _, _ := setupHandler()

		req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
		rec := httptest.NewRecorder()

		h.HistoryHandler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("RejectsNonGet", func(t *testing.T) {
		h, _, _ := setupHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/history", nil)
		rec := httptest.NewRecorder()

		h.HistoryHandler(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
