package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/resume-screener/internal/errs"
	"github.com/feichai0017/resume-screener/internal/models"
	"github.com/feichai0017/resume-screener/internal/service/resume"
	"github.com/feichai0017/resume-screener/pkg/logger"
)

type ResumeHandler struct {
	service resume.ResumeProcessor
	logger  logger.Logger
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewResumeHandler(service resume.ResumeProcessor, logger logger.Logger) *ResumeHandler {
	return &ResumeHandler{
		service: service,
		logger:  logger,
	}
}

// Upload accepts one multipart PDF and schedules its pipeline run.
func (h *ResumeHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, errs.E(errs.KindInvalidInput, "invalid file upload", err))
		return
	}
	defer file.Close()

	result, err := h.service.Upload(c.Request.Context(), file, header)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: "Resume uploaded, processing scheduled",
		Data:    result,
	})
}

// Lookup returns one record without its raw text.
func (h *ResumeHandler) Lookup(c *gin.Context) {
	detail, err := h.service.Lookup(c.Request.Context(), c.Param("resumeId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: "Resume found",
		Data:    detail,
	})
}

// Search ranks indexed resumes against a job description.
func (h *ResumeHandler) Search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errs.E(errs.KindInvalidInput, "invalid search request", err))
		return
	}

	hits, err := h.service.Search(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: "Search completed",
		Data:    gin.H{"results": hits},
	})
}

// PipelineStats reports queue depth and failure counts.
func (h *ResumeHandler) PipelineStats(c *gin.Context) {
	stats, err := h.service.PipelineStats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: "Pipeline stats",
		Data:    stats,
	})
}

func (h *ResumeHandler) handleError(c *gin.Context, err error) {
	h.logger.Error("Request failed",
		logger.String("path", c.Request.URL.Path),
		logger.String("kind", errs.KindOf(err).String()),
		logger.Error(err),
	)

	c.JSON(statusCode(err), Response{
		Status:  "error",
		Message: errs.Message(err),
	})
}

// statusCode maps failure kinds onto HTTP statuses. Unclassified errors
// are treated as internal.
func statusCode(err error) int {
	switch errs.KindOf(err) {
	case errs.KindInvalidInput:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
