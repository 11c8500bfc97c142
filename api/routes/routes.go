package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/resume-screener/api/handlers"
	"github.com/feichai0017/resume-screener/api/middleware"
)

// SetupRoutes wires all HTTP endpoints.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Resume screener is running",
		})
	})

	v1 := r.Group("/api/v1")

	resumes := v1.Group("/resumes")
	{
		resumes.POST("/upload", h.Resume.Upload)
		resumes.POST("/search", h.Resume.Search)
		resumes.GET("/:resumeId", h.Resume.Lookup)
	}

	pipeline := v1.Group("/pipeline")
	{
		pipeline.GET("/stats", h.Resume.PipelineStats)
	}
}
