package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/shipguard/internal/invoice/domain"
	"github.com/smallbiznis/shipguard/internal/shopify"
	storedomain "github.com/smallbiznis/shipguard/internal/store/domain"
	"github.com/smallbiznis/shipguard/internal/sync"
)

type syncRequest struct {
	StoreID   string `json:"store_id"`
	DaysBack  int    `json:"days_back"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (s *Server) handleSync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	window, err := windowFromRequest(req, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.StoreID != "" {
		storeID, err := snowflake.ParseString(req.StoreID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_store_id"})
			return
		}
		result, err := s.orchestrator.SyncOne(c.Request.Context(), storeID, window)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, storedomain.ErrStoreNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	batch, err := s.orchestrator.SyncAll(c.Request.Context(), window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, batch)
}

func windowFromRequest(req syncRequest, now time.Time) (shopify.DateWindow, error) {
	if req.StartDate != "" || req.EndDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return shopify.DateWindow{}, errors.New("invalid_start_date")
		}
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return shopify.DateWindow{}, errors.New("invalid_end_date")
		}
		if end.Before(start) {
			return shopify.DateWindow{}, errors.New("end_before_start")
		}
		// Make the end bound inclusive of the whole day.
		return shopify.DateWindow{Start: start, End: end.AddDate(0, 0, 1).Add(-time.Second)}, nil
	}
	return sync.WindowFromDaysBack(now, req.DaysBack), nil
}

type weeklyInvoiceRequest struct {
	TestMode bool   `json:"test_mode"`
	StoreID  string `json:"store_id"`
}

func (s *Server) handleWeeklyInvoices(c *gin.Context) {
	var req weeklyInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	domainReq := invoicedomain.GenerateWeeklyRequest{TestMode: req.TestMode}
	if req.StoreID != "" {
		storeID, err := snowflake.ParseString(req.StoreID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_store_id"})
			return
		}
		domainReq.StoreID = &storeID
	}

	results, err := s.invoiceSvc.GenerateWeeklyInvoices(c.Request.Context(), domainReq)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storedomain.ErrStoreNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type supplementalRequest struct {
	StoreID string `json:"store_id" binding:"required"`
	Week    string `json:"week" binding:"required"`
}

func (s *Server) handleSupplementalInvoice(c *gin.Context) {
	var req supplementalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	storeID, err := snowflake.ParseString(req.StoreID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_store_id"})
		return
	}

	result, err := s.invoiceSvc.Reconcile(c.Request.Context(), storeID, req.Week)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, invoicedomain.ErrInvalidWeekID):
			status = http.StatusBadRequest
		case errors.Is(err, invoicedomain.ErrWeeklyInvoiceNotFound), errors.Is(err, storedomain.ErrStoreNotFound):
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
