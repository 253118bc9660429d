package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nicoguerrero/boleteria/internal/domain"
	"github.com/nicoguerrero/boleteria/internal/service/zones"
)

type ZoneHandler struct {
	service zones.ZoneUseCase
}

func NewZoneHandler(service zones.ZoneUseCase) *ZoneHandler {
	return &ZoneHandler{service: service}
}

type createZoneRequest struct {
	Name  string `json:"name" binding:"required"`
	Rows  int    `json:"rows" binding:"required,min=1"`
	Cols  int    `json:"cols" binding:"required,min=1"`
	Label string `json:"label_prefix"`
}

type seatResponse struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Status string `json:"status"`
}

func (h *ZoneHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id/seats", h.listSeats)
	router.DELETE("/:id", h.delete)
}

// create builds a zone with a rows x cols seat grid. Layout authoring only;
// once seats are sold the zone cannot be deleted.
func (h *ZoneHandler) create(c *gin.Context) {
	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zone := &domain.Zone{Name: req.Name, Capacity: req.Rows * req.Cols}
	seats := make([]domain.Seat, 0, zone.Capacity)
	for row := 1; row <= req.Rows; row++ {
		for col := 1; col <= req.Cols; col++ {
			seats = append(seats, domain.Seat{
				Label: req.Label + rowLabel(row) + strconv.Itoa(col),
				Row:   row,
				Col:   col,
			})
		}
	}

	if err := h.service.CreateZone(c.Request.Context(), zone, seats); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"zone_id":  zone.ID,
		"name":     zone.Name,
		"capacity": zone.Capacity,
	})
}

func (h *ZoneHandler) listSeats(c *gin.Context) {
	zoneID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || zoneID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid zone id"})
		return
	}

	seats, err := h.service.ListSeats(c.Request.Context(), zoneID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := make([]seatResponse, 0, len(seats))
	for _, s := range seats {
		resp = append(resp, seatResponse{
			ID:     s.ID,
			Label:  s.Label,
			Row:    s.Row,
			Col:    s.Col,
			Status: string(s.Status),
		})
	}
	c.JSON(http.StatusOK, gin.H{"zone_id": zoneID, "seats": resp})
}

func (h *ZoneHandler) delete(c *gin.Context) {
	zoneID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || zoneID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid zone id"})
		return
	}

	err = h.service.DeleteZone(c.Request.Context(), zoneID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, domain.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "zone not found"})
	case errors.Is(err, domain.ErrZoneHasSales):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// rowLabel turns 1-based row numbers into spreadsheet-style letters:
// 1 -> A, 26 -> Z, 27 -> AA.
func rowLabel(row int) string {
	label := ""
	for row > 0 {
		row--
		label = string(rune('A'+row%26)) + label
		row /= 26
	}
	return label
}
