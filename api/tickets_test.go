package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicoguerrero/boleteria/internal/domain"
	"github.com/nicoguerrero/boleteria/internal/service/redemption"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRedemptionUseCase is a mock implementation of redemption.RedemptionUseCase
type MockRedemptionUseCase struct {
	mock.Mock
}

func (m *MockRedemptionUseCase) Redeem(ctx context.Context, qrCode, deviceID string) (*redemption.Result, error) {
	args := m.Called(ctx, qrCode, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redemption.Result), args.Error(1)
}

func (m *MockRedemptionUseCase) Inspect(ctx context.Context, qrCode string) (*domain.IssuedTicket, int, error) {
	args := m.Called(ctx, qrCode)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*domain.IssuedTicket), args.Int(1), args.Error(2)
}

func newTicketRouter(service redemption.RedemptionUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewTicketHandler(service).Register(router.Group("/api/v1/tickets"))
	return router
}

func redeemBody(t *testing.T, qr, device string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]string{"qr_code": qr, "device_id": device})
	assert.NoError(t, err)
	return bytes.NewReader(body)
}

func TestTicketHandler_redeem_success(t *testing.T) {
	mockService := &MockRedemptionUseCase{}
	router := newTicketRouter(mockService)

	mockService.On("Redeem", mock.Anything, "TICKET-001", "DEV-1").Return(&redemption.Result{
		TicketID:       31,
		PreviousStatus: domain.TicketStatusValid,
		CurrentStatus:  domain.TicketStatusRedeemed,
		RedeemedAt:     time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/redeem", redeemBody(t, "TICKET-001", "DEV-1"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp redeemResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALID", resp.PreviousStatus)
	assert.Equal(t, "REDEEMED", resp.CurrentStatus)
	assert.NotEmpty(t, resp.RedeemedAt)
}

func TestTicketHandler_redeem_alreadyRedeemed(t *testing.T) {
	mockService := &MockRedemptionUseCase{}
	router := newTicketRouter(mockService)

	mockService.On("Redeem", mock.Anything, "TICKET-001", "DEV-2").Return(&redemption.Result{
		TicketID:       31,
		PreviousStatus: domain.TicketStatusRedeemed,
		CurrentStatus:  domain.TicketStatusRedeemed,
	}, domain.ErrTicketAlreadyRedeemed)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/redeem", redeemBody(t, "TICKET-001", "DEV-2"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already used")
	assert.Contains(t, w.Body.String(), "REDEEMED")
}

func TestTicketHandler_redeem_alreadyRedeemedWithoutState(t *testing.T) {
	mockService := &MockRedemptionUseCase{}
	router := newTicketRouter(mockService)

	// A lost race inside the status update surfaces the rejection without
	// ticket state. The handler must still answer 409.
	mockService.On("Redeem", mock.Anything, "TICKET-001", "DEV-2").
		Return(nil, domain.ErrTicketAlreadyRedeemed)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/redeem", redeemBody(t, "TICKET-001", "DEV-2"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already used")
	assert.NotContains(t, w.Body.String(), "ticket_id")
}

func TestTicketHandler_redeem_void(t *testing.T) {
	mockService := &MockRedemptionUseCase{}
	router := newTicketRouter(mockService)

	mockService.On("Redeem", mock.Anything, "TICKET-001", "DEV-1").Return(&redemption.Result{
		TicketID:       31,
		PreviousStatus: domain.TicketStatusVoid,
		CurrentStatus:  domain.TicketStatusVoid,
	}, domain.ErrTicketVoid)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/redeem", redeemBody(t, "TICKET-001", "DEV-1"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "not a valid ticket")
}

func TestTicketHandler_redeem_notFound(t *testing.T) {
	mockService := &MockRedemptionUseCase{}
	router := newTicketRouter(mockService)

	mockService.On("Redeem", mock.Anything, "DOES-NOT-EXIST", "DEV-1").
		Return(nil, domain.ErrTicketNotFound)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/redeem", redeemBody(t, "DOES-NOT-EXIST", "DEV-1"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ticket not found")
}

func TestTicketHandler_redeem_missingFields(t *testing.T) {
	mockService := &MockRedemptionUseCase{}
	router := newTicketRouter(mockService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/redeem", redeemBody(t, "TICKET-001", ""))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything)
}

func TestTicketHandler_inspect(t *testing.T) {
	mockService := &MockRedemptionUseCase{}
	router := newTicketRouter(mockService)

	mockService.On("Inspect", mock.Anything, "TICKET-001").Return(&domain.IssuedTicket{
		ID:     31,
		QRCode: "TICKET-001",
		Status: domain.TicketStatusRedeemed,
		SeatID: 11,
	}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/TICKET-001", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp inspectResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REDEEMED", resp.Status)
	assert.Equal(t, 1, resp.Redemptions)
}

func TestTicketHandler_inspect_notFound(t *testing.T) {
	mockService := &MockRedemptionUseCase{}
	router := newTicketRouter(mockService)

	mockService.On("Inspect", mock.Anything, "NOPE").Return(nil, 0, domain.ErrTicketNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/NOPE", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
