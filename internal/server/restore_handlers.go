package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recoveryd-dev/recoveryd/internal/diagnose"
	"github.com/recoveryd-dev/recoveryd/internal/recovery"
)

type RepairRequest struct {
	Log    string `json:"log" binding:"required"`
	Tenant string `json:"tenant" validate:"tenant"`
}

type RepairResponse struct {
	Matched bool   `json:"matched"`
	Script  string `json:"script"`
}

type RecoverRequest struct {
	ErrorLogPath string `json:"error_log_path" binding:"required"`
	Tenant       string `json:"tenant" validate:"tenant"`
}

// @Router /api/repair [post]
// @Param body body RepairRequest true "Error log to diagnose"
// @Success 200 {object} RepairResponse
func (s *Server) suggestRepair(c *gin.Context) {
	var req RepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, s.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		respondWithError(c, s.logger, http.StatusBadRequest, err, "Validation failed")
		return
	}

	script, matched := s.registry.FindRepair(req.Log, req.Tenant)
	if !matched {
		script = diagnose.NoSuggestion
	}
	c.JSON(http.StatusOK, RepairResponse{Matched: matched, Script: script})
}

// @Router /api/recover [post]
// @Param body body RecoverRequest true "Error log that triggered recovery"
// @Success 200 {object} recovery.Report
// @Failure 422 {object} recovery.Report
func (s *Server) runRecovery(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, s.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		respondWithError(c, s.logger, http.StatusBadRequest, err, "Validation failed")
		return
	}

	s.recoverMu.Lock()
	defer s.recoverMu.Unlock()

	report := s.orchestrator.Recover(c.Request.Context(), req.ErrorLogPath, req.Tenant)

	status := http.StatusOK
	if report.ExitCode != recovery.ExitOK {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, report)
}
