package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"loglens/internal/analyzer"
	"loglens/internal/llm"
)

type analyzeRequest struct {
	LogData      string `json:"log_data" binding:"required"`
	Provider     string `json:"provider"`
	ModelID      string `json:"model_id"`
	Instructions string `json:"instructions"`
}

type analyzeResponse struct {
	Success  bool                  `json:"success"`
	Analysis string                `json:"analysis,omitempty"`
	Model    *llm.ModelDescriptor  `json:"model,omitempty"`
	Error    *llm.LLMError         `json:"error,omitempty"`
	Attempts []llm.AnalysisAttempt `json:"attempts"`
}

type modelResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	provider, err := s.resolveProvider(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.svc.AnalyzeWithInstructions(c.Request.Context(), provider, req.ModelID, req.LogData, req.Instructions)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analyzer.ErrLogTooShort) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if !result.Succeeded() {
		status := http.StatusBadGateway
		if result.Err != nil && result.Err.Kind == llm.ErrorAuth {
			status = http.StatusUnauthorized
		}
		c.JSON(status, analyzeResponse{
			Success:  false,
			Error:    result.Err,
			Attempts: result.Attempts,
		})
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Success:  true,
		Analysis: result.Text,
		Model:    result.SucceededModel,
		Attempts: result.Attempts,
	})
}

func (s *Server) handleModels(c *gin.Context) {
	provider, err := s.resolveProvider(c.Query("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	models := s.svc.Models(c.Request.Context(), provider)
	out := make([]modelResponse, 0, len(models))
	for _, m := range models {
		meta := llm.Meta(m.ID)
		out = append(out, modelResponse{
			ID:          m.ID,
			Name:        meta.Name,
			Description: meta.Description,
			IsDefault:   m.IsDefault,
		})
	}
	c.JSON(http.StatusOK, gin.H{"provider": provider, "models": out})
}

func (s *Server) handleRefreshModels(c *gin.Context) {
	provider, err := s.resolveProvider(c.Query("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.svc.RefreshModels(provider)
	c.JSON(http.StatusOK, gin.H{"provider": provider, "status": "refreshed"})
}

func (s *Server) handleProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": s.svc.Providers()})
}

func (s *Server) handleSamples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"samples": analyzer.Samples()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"providers": s.svc.Providers(),
	})
}

// resolveProvider parses the requested provider name, defaulting to the
// first configured provider when empty.
func (s *Server) resolveProvider(name string) (llm.ProviderID, error) {
	if name == "" {
		providers := s.svc.Providers()
		if len(providers) == 0 {
			return "", errors.New("no providers configured")
		}
		return providers[0], nil
	}
	return llm.ParseProviderID(name)
}
