package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/healthlang/ilera/common/logger"
	"github.com/healthlang/ilera/orchestrator"
	"github.com/healthlang/ilera/schema"
)

// Server is the HTTP surface over the query pipeline.
type Server struct {
	orch *orchestrator.Orchestrator
	log  logger.Logger
}

// New creates the HTTP server.
func New(orch *orchestrator.Orchestrator) *Server {
	return &Server{orch: orch, log: logger.NewWithComponent("server")}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.POST("/query", s.handleQuery)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "ilera"})
}

// supportedLangs is the language pair the pipeline can format and
// translate. Empty means "use the default".
var supportedLangs = map[string]bool{"": true, "en": true, "yo": true}

// handleQuery always answers 200 with the success flag in the body;
// only an unreadable body, empty query, or unsupported language code
// is a client error.
func (s *Server) handleQuery(c *gin.Context) {
	var req schema.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	for _, lang := range []string{req.SourceLang, req.TargetLang} {
		if !supportedLangs[strings.ToLower(lang)] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language code: " + lang})
			return
		}
	}
	resp := s.orch.ProcessQuery(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request handled")
	}
}
