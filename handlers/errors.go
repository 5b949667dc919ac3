package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"innkeeper/database"
	"innkeeper/services/booking"
	"innkeeper/services/interval"
	"innkeeper/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps engine, catalog and parse failures onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status, message := http.StatusServiceUnavailable, "storage unavailable"

	var dateErr *utils.DateParseError
	var engineErr *booking.Error
	switch {
	case errors.As(err, &dateErr):
		status, message = http.StatusBadRequest, "invalid date"
	case errors.Is(err, interval.ErrEmpty):
		status, message = http.StatusBadRequest, interval.ErrEmpty.Error()
	case errors.As(err, &engineErr):
		message = engineErr.Message
		switch engineErr.Kind {
		case booking.KindNotFound:
			status = http.StatusNotFound
		case booking.KindInvalidInterval, booking.KindInvalidRequest:
			status = http.StatusBadRequest
		case booking.KindConflict:
			status = http.StatusConflict
		}
	case errors.Is(err, database.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	}
	utils.JSONError(c, status, message, err.Error())
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid "+name, c.Param(name))
		return 0, false
	}
	return id, true
}

// parseStay parses a check-in/check-out pair. When today is non-zero a
// check-in before it is rejected.
func parseStay(c *gin.Context, checkIn, checkOut string, today time.Time) (time.Time, time.Time, bool) {
	in, err := utils.ParseDate(checkIn)
	if err != nil {
		respondError(c, err)
		return time.Time{}, time.Time{}, false
	}
	out, err := utils.ParseDate(checkOut)
	if err != nil {
		respondError(c, err)
		return time.Time{}, time.Time{}, false
	}
	if !today.IsZero() && in.Before(interval.Day(today)) {
		utils.JSONError(c, http.StatusBadRequest, "check-in date cannot be in the past", checkIn)
		return time.Time{}, time.Time{}, false
	}
	return in, out, true
}
