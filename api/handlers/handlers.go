package handlers

import (
	"github.com/feichai0017/resume-screener/internal/service/resume"
	"github.com/feichai0017/resume-screener/pkg/logger"
)

type Handlers struct {
	Resume *ResumeHandler
}

func NewHandlers(
	resumeService resume.ResumeProcessor,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Resume: NewResumeHandler(resumeService, logger),
	}
}
