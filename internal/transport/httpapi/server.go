// Package httpapi exposes generation over a JSON HTTP API. It is a thin
// transport: it maps form fields onto a GenerateRequest, calls the
// orchestrator once per requested format, and writes the rendered documents
// into a session directory for download.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
	"github.com/phoenixqa/smartcase/internal/export"
	"github.com/phoenixqa/smartcase/internal/render"
	"github.com/phoenixqa/smartcase/internal/usecase/generation"
)

// formatBoth asks for both document kinds in one request; the core itself
// only knows plain and bdd.
const formatBoth = "both"

// Server handles the HTTP API routes.
type Server struct {
	orchestrator *generation.Orchestrator
	writer       *export.Writer
	now          func() time.Time
}

// NewServer creates a Server. The clock is injectable for tests.
func NewServer(orch *generation.Orchestrator, writer *export.Writer) *Server {
	return &Server{orchestrator: orch, writer: writer, now: time.Now}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/generate", s.handleGenerate)
		api.GET("/download/:session/:file", s.handleDownload)
	}
	return router
}

type generateRequest struct {
	UserStory    string                 `json:"user_story"`
	LLMProvider  string                 `json:"llm_provider"`
	OutputFormat string                 `json:"output_format"`
	NumCases     int                    `json:"num_cases"`
	Context      []testgen.ContextBlock `json:"context"`
}

type generateResponse struct {
	Success     bool                     `json:"success"`
	Error       string                   `json:"error,omitempty"`
	Plain       []testgen.PlainTestCase  `json:"plain,omitempty"`
	BDD         []testgen.BDDScenario    `json:"bdd,omitempty"`
	Warnings    []testgen.Warning        `json:"warnings,omitempty"`
	Files       []export.File            `json:"files,omitempty"`
	SessionID   string                   `json:"session_id,omitempty"`
	GenerationS float64                  `json:"generation_time_seconds"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "smartcase-api",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	start := s.now()

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, generateResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	provider := req.LLMProvider
	if provider == "" {
		provider = testgen.ProviderAll
	}
	outputFormat := req.OutputFormat
	if outputFormat == "" {
		outputFormat = string(testgen.FormatPlain)
	}

	formats := []testgen.Format{testgen.Format(outputFormat)}
	if outputFormat == formatBoth {
		formats = []testgen.Format{testgen.FormatPlain, testgen.FormatBDD}
	}

	resp := generateResponse{}
	meta := render.Metadata{GeneratedAt: start, Story: req.UserStory}
	var docs []export.Document
	var lastErr error

	for _, format := range formats {
		result, err := s.orchestrator.Generate(c.Request.Context(), testgen.GenerateRequest{
			Story:     req.UserStory,
			Format:    format,
			Provider:  provider,
			CaseCount: req.NumCases,
			Context:   req.Context,
		})
		if err != nil {
			lastErr = err
			resp.Warnings = append(resp.Warnings, testgen.Warning{
				Provider: provider,
				Reason:   string(format) + ": " + err.Error(),
			})
			continue
		}

		resp.Warnings = append(resp.Warnings, result.Warnings...)
		if format == testgen.FormatBDD {
			resp.BDD = result.BDD
			docs = append(docs, export.Document{Kind: "bdd", Content: render.BDDDocument(result.BDD, meta)})
		} else {
			resp.Plain = result.Plain
			docs = append(docs, export.Document{Kind: "plain", Content: render.PlainDocument(result.Plain, meta)})
		}
	}

	resp.GenerationS = s.now().Sub(start).Seconds()

	if len(docs) == 0 {
		resp.Error = lastErr.Error()
		c.JSON(statusForError(lastErr), resp)
		return
	}

	sessionID, files, err := s.writer.WriteSession("generated_tests", start, docs)
	if err != nil {
		resp.Error = "failed to write output files: " + err.Error()
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	resp.Success = true
	resp.SessionID = sessionID
	resp.Files = files
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDownload(c *gin.Context) {
	path, err := s.writer.Resolve(c.Param("session"), c.Param("file"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.FileAttachment(path, c.Param("file"))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, testgen.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, testgen.ErrAllProvidersFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
