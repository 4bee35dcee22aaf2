package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"arxiv-daily/archive"
)

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ListDaysHandler returns the archive index, newest first.
func ListDaysHandler(store archive.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		dates, err := store.Dates(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Newest first for the consumer.
		for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
			dates[i], dates[j] = dates[j], dates[i]
		}
		c.JSON(http.StatusOK, gin.H{"days": dates})
	}
}

// GetDayHandler returns one dated collection of summaries.
func GetDayHandler(store archive.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Param("date")
		if _, err := time.Parse(archive.DateFormat, date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
			return
		}

		day, err := store.Day(c.Request.Context(), date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(day.Entries) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no summaries for " + date})
			return
		}
		c.JSON(http.StatusOK, day)
	}
}
