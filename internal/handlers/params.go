package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"event-ticketing/internal/auth"
	"event-ticketing/internal/ticketing"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func parseEventID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid event id")
		return 0, false
	}
	return id, true
}

func parseAddressParam(c *gin.Context) (ticketing.Address, bool) {
	addr := ticketing.Address(c.Param("address"))
	if !addr.Valid() {
		badRequest(c, "invalid address")
		return "", false
	}
	return addr, true
}

// parsePage reads ?page (0-based) and ?page_size
func parsePage(c *gin.Context) (page, size uint64, ok bool) {
	page, err := strconv.ParseUint(c.DefaultQuery("page", "0"), 10, 64)
	if err != nil {
		badRequest(c, "invalid page")
		return 0, 0, false
	}
	size, err = strconv.ParseUint(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)), 10, 64)
	if err != nil || size == 0 {
		badRequest(c, "invalid page_size")
		return 0, 0, false
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, true
}

// callerFrom returns the authenticated wallet, writing a 401 if there is none
func callerFrom(c *gin.Context) (ticketing.Address, bool) {
	addr, ok := auth.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "unauthenticated"})
		return "", false
	}
	return addr, true
}
