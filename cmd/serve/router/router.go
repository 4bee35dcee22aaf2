package router

import (
	"github.com/gin-gonic/gin"
	cors "github.com/rs/cors/wrapper/gin"

	"arxiv-daily/archive"
	"arxiv-daily/cmd/serve/handlers"
)

func New(store archive.Store) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/health", handlers.HealthHandler())

	api := r.Group("/api/v1")
	{
		api.GET("/days", handlers.ListDaysHandler(store))
		api.GET("/days/:date", handlers.GetDayHandler(store))
	}

	return r
}
