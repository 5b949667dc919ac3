package handlers

import (
	"net/http"
	"strings"
	"time"

	"innkeeper/services/booking"
	"innkeeper/services/catalog"
	"innkeeper/services/interval"
	"innkeeper/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoomHandler serves catalog lookups and quotes.
type RoomHandler struct {
	Catalog catalog.Service
	Engine  booking.Engine
	Now     func() time.Time
}

func NewRoomHandler(cat catalog.Service, engine booking.Engine, now func() time.Time) *RoomHandler {
	if now == nil {
		now = time.Now
	}
	return &RoomHandler{Catalog: cat, Engine: engine, Now: now}
}

// ListAvailableHandler returns rooms whose availability flag is set.
func (h *RoomHandler) ListAvailableHandler(c *gin.Context) {
	rooms, err := h.Catalog.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// SearchHandler returns rooms of a category free for the requested stay.
// A blank category searches all categories.
func (h *RoomHandler) SearchHandler(c *gin.Context) {
	checkIn, checkOut, ok := parseStay(c, c.Query("check_in"), c.Query("check_out"), h.Now())
	if !ok {
		return
	}
	category := strings.TrimSpace(c.Query("category"))

	rooms, err := h.Catalog.Search(c.Request.Context(), category, checkIn, checkOut)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Debug("Room search",
		zap.String("category", category),
		zap.String("checkIn", utils.FormatDate(checkIn)),
		zap.String("checkOut", utils.FormatDate(checkOut)),
		zap.Int("results", len(rooms)))
	c.JSON(http.StatusOK, rooms)
}

// FindByLabelHandler returns an available room by its label.
func (h *RoomHandler) FindByLabelHandler(c *gin.Context) {
	room, err := h.Catalog.FindByLabel(c.Request.Context(), c.Param("label"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// QuoteHandler prices a stay without booking it.
func (h *RoomHandler) QuoteHandler(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	checkIn, checkOut, ok := parseStay(c, c.Query("check_in"), c.Query("check_out"), time.Time{})
	if !ok {
		return
	}

	price, err := h.Engine.Quote(c.Request.Context(), roomID, checkIn, checkOut)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roomId":     roomID,
		"checkIn":    utils.FormatDate(checkIn),
		"checkOut":   utils.FormatDate(checkOut),
		"nights":     interval.Nights(checkIn, checkOut),
		"totalPrice": price,
	})
}
