package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicoguerrero/boleteria/internal/domain"
	"github.com/nicoguerrero/boleteria/internal/service/redemption"
)

type TicketHandler struct {
	service redemption.RedemptionUseCase
}

func NewTicketHandler(service redemption.RedemptionUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

type redeemRequest struct {
	QRCode   string `json:"qr_code" binding:"required"`
	DeviceID string `json:"device_id" binding:"required"`
}

type redeemResponse struct {
	TicketID       int64  `json:"ticket_id"`
	PreviousStatus string `json:"previous_status"`
	CurrentStatus  string `json:"current_status"`
	RedeemedAt     string `json:"redeemed_at,omitempty"`
}

type inspectResponse struct {
	TicketID    int64  `json:"ticket_id"`
	QRCode      string `json:"qr_code"`
	Status      string `json:"status"`
	SeatID      int64  `json:"seat_id"`
	IssuedAt    string `json:"issued_at"`
	Redemptions int    `json:"redemptions"`
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/redeem", h.redeem)
	router.GET("/:qr", h.inspect)
}

// redeem keeps rejection outcomes distinct for the scanning operator:
// "already used", "not a valid ticket" and "ticket not found" are three
// different responses, never one generic error.
func (h *TicketHandler) redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Redeem(c.Request.Context(), req.QRCode, req.DeviceID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toRedeemResponse(result))
	case errors.Is(err, domain.ErrTicketAlreadyRedeemed):
		body := gin.H{"error": "ticket already used"}
		if result != nil {
			body["ticket"] = toRedeemResponse(result)
		}
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, domain.ErrTicketVoid):
		body := gin.H{"error": "not a valid ticket"}
		if result != nil {
			body["ticket"] = toRedeemResponse(result)
		}
		c.JSON(http.StatusGone, body)
	case errors.Is(err, domain.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *TicketHandler) inspect(c *gin.Context) {
	ticket, redemptions, err := h.service.Inspect(c.Request.Context(), c.Param("qr"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, inspectResponse{
			TicketID:    ticket.ID,
			QRCode:      ticket.QRCode,
			Status:      string(ticket.Status),
			SeatID:      ticket.SeatID,
			IssuedAt:    ticket.IssuedAt.Format(time.RFC3339),
			Redemptions: redemptions,
		})
	case errors.Is(err, domain.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toRedeemResponse(result *redemption.Result) redeemResponse {
	resp := redeemResponse{
		TicketID:       result.TicketID,
		PreviousStatus: string(result.PreviousStatus),
		CurrentStatus:  string(result.CurrentStatus),
	}
	if !result.RedeemedAt.IsZero() {
		resp.RedeemedAt = result.RedeemedAt.Format(time.RFC3339)
	}
	return resp
}
