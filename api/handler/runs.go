package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coachscout/coachscout/models"
	"github.com/coachscout/coachscout/runner"
	"github.com/coachscout/coachscout/store"
)

// PostRun returns a handler for POST /api/v1/runs.
//
// Triggers a batch scrape in the background and returns the job ID
// immediately. Only one batch may run at a time; a second trigger while a
// batch is in flight gets 409.
func PostRun(r *runner.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StartRunRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, models.APIError{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "invalid request body: " + err.Error(),
				},
			})
			return
		}

		resp, err := r.StartRun(c.Request.Context(), req)
		if err != nil {
			c.JSON(statusFor(err), models.APIError{Error: detailFor(err)})
			return
		}

		c.JSON(http.StatusAccepted, resp)
	}
}

// GetRun returns a handler for GET /api/v1/runs/:id.
func GetRun(r *runner.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := r.GetRun(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, models.APIError{
					Error: &models.ErrorDetail{
						Code:    models.ErrCodeInvalidInput,
						Message: "run not found: " + c.Param("id"),
					},
				})
				return
			}
			c.JSON(http.StatusInternalServerError, models.APIError{Error: detailFor(err)})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// ListRuns returns a handler for GET /api/v1/runs.
//
// Accepts ?limit=N (default 20, max 100).
func ListRuns(r *runner.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 100 {
				c.JSON(http.StatusBadRequest, models.APIError{
					Error: &models.ErrorDetail{
						Code:    models.ErrCodeInvalidInput,
						Message: "limit must be an integer between 1 and 100",
					},
				})
				return
			}
			limit = n
		}

		runs, err := r.RecentRuns(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.APIError{Error: detailFor(err)})
			return
		}
		c.JSON(http.StatusOK, models.RunListResponse{Runs: runs})
	}
}

// statusFor maps internal error codes to HTTP statuses.
func statusFor(err error) int {
	var se *models.ScrapeError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch se.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeRateLimited:
		return http.StatusConflict
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// detailFor extracts a structured detail from an internal error.
func detailFor(err error) *models.ErrorDetail {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se.ToDetail()
	}
	return &models.ErrorDetail{Code: models.ErrCodeInternal, Message: err.Error()}
}
