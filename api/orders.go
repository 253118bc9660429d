package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicoguerrero/boleteria/internal/domain"
	"github.com/nicoguerrero/boleteria/internal/service/reservation"
)

type OrderHandler struct {
	service reservation.ReservationUseCase
}

func NewOrderHandler(service reservation.ReservationUseCase) *OrderHandler {
	return &OrderHandler{service: service}
}

type buyerRequest struct {
	Kind       string `json:"kind" binding:"required"`
	AccountID  int64  `json:"account_id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
}

type createOrderRequest struct {
	Buyer     buyerRequest                `json:"buyer" binding:"required"`
	Seats     []reservation.SeatSelection `json:"seats"`
	Donations []reservation.Donation      `json:"donations"`
}

type lineItemResponse struct {
	Kind           string  `json:"kind"`
	SeatIDs        []int64 `json:"seat_ids,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	SubtotalCents  int64   `json:"subtotal_cents"`
}

type orderResponse struct {
	Token      string             `json:"token"`
	Status     string             `json:"status"`
	BuyerKind  string             `json:"buyer_kind"`
	TotalCents int64              `json:"total_cents"`
	ExpiresAt  string             `json:"expires_at"`
	Items      []lineItemResponse `json:"items"`
}

type ticketResponse struct {
	TicketID int64  `json:"ticket_id"`
	QRCode   string `json:"qr_code"`
	SeatID   int64  `json:"seat_id"`
	Status   string `json:"status"`
	IssuedAt string `json:"issued_at"`
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:token", h.get)
	router.POST("/:token/payment", h.confirmPayment)
	router.POST("/:token/void-tickets", h.voidTickets)
	router.DELETE("/:token", h.cancel)
}

func (h *OrderHandler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buyer domain.Buyer
	switch domain.BuyerKind(req.Buyer.Kind) {
	case domain.BuyerKindAccount:
		buyer = domain.AccountBuyer(req.Buyer.AccountID)
	case domain.BuyerKindGuest:
		buyer = domain.GuestBuyer(req.Buyer.GuestName, req.Buyer.GuestEmail)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "buyer kind must be ACCOUNT or GUEST"})
		return
	}

	order, err := h.service.ReserveSeats(c.Request.Context(), reservation.CreateOrderInput{
		Buyer:     buyer,
		Seats:     req.Seats,
		Donations: req.Donations,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) get(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) confirmPayment(c *gin.Context) {
	var req reservation.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, tickets, err := h.service.ConfirmPayment(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	ticketResponses := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		ticketResponses = append(ticketResponses, ticketResponse{
			TicketID: t.ID,
			QRCode:   t.QRCode,
			SeatID:   t.SeatID,
			Status:   string(t.Status),
			IssuedAt: t.IssuedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"order":   toOrderResponse(order),
		"tickets": ticketResponses,
	})
}

func (h *OrderHandler) voidTickets(c *gin.Context) {
	if err := h.service.VoidOrderTickets(c.Request.Context(), c.Param("token")); err != nil {
		writeOrderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) cancel(c *gin.Context) {
	order, err := h.service.CancelOrder(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func toOrderResponse(order *domain.Order) orderResponse {
	items := make([]lineItemResponse, 0, len(order.Items))
	for _, li := range order.Items {
		items = append(items, lineItemResponse{
			Kind:           string(li.Kind),
			SeatIDs:        li.SeatIDs,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
			SubtotalCents:  li.SubtotalCents(),
		})
	}
	return orderResponse{
		Token:      order.Token,
		Status:     string(order.Status),
		BuyerKind:  string(order.Buyer.Kind),
		TotalCents: order.TotalCents,
		ExpiresAt:  order.ExpiresAt.Format(time.RFC3339),
		Items:      items,
	}
}

// writeOrderError keeps the business outcomes distinct on the wire: a buyer
// must see "seat no longer available" and "seat does not exist" as
// different failures.
func writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSeatUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reason": "seat_unavailable"})
	case errors.Is(err, domain.ErrSeatNotFound), errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderNotPending), errors.Is(err, domain.ErrOrderCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptySeatSelection),
		errors.Is(err, domain.ErrInvalidBuyer),
		errors.Is(err, domain.ErrInvalidLineItem),
		errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
