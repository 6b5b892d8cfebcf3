package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coachscout/coachscout/models"
	"github.com/coachscout/coachscout/store"
)

// Staff returns a handler for GET /api/v1/targets/:id/staff.
//
// Serves the most recently extracted staff records for one school.
func Staff(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.APIError{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "target id must be an integer",
				},
			})
			return
		}

		records, err := st.StaffByTarget(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.APIError{Error: detailFor(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"target_id": id,
			"count":     len(records),
			"staff":     records,
		})
	}
}
