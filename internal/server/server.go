// Package server exposes rectification and scanning over HTTP.
package server

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"card-rectifier/internal/rectify"
	"card-rectifier/internal/scan"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxUpload = 32 << 20

type Server struct {
	rect    *rectify.Rectifier
	scanner *scan.Scanner
	log     zerolog.Logger
}

func New(rect *rectify.Rectifier, scanner *scan.Scanner, log zerolog.Logger) *Server {
	return &Server{rect: rect, scanner: scanner, log: log.With().Str("component", "server").Logger()}
}

// Router returns the HTTP routes:
//
//	GET  /healthz
//	POST /api/v1/rectify  multipart "file" -> PNG text region
//	POST /api/v1/scan     multipart "file" -> JSON scan report
func (s *Server) Router() *gin.Engine {
	e := gin.New()
	e.MaxMultipartMemory = maxUpload
	e.Use(gin.Recovery(), s.requestLog())

	e.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	v1 := e.Group("/api").Group("/v1")
	v1.POST("/rectify", s.Rectify)
	v1.POST("/scan", s.Scan)
	return e
}

// Rectify returns the text region of the uploaded photograph as PNG.
func (s *Server) Rectify(c *gin.Context) {
	name, buf, ok := s.upload(c)
	if !ok {
		return
	}
	region, err := s.rect.RectifyBytes(buf)
	if err != nil {
		stage, _ := rectify.StageOf(err)
		s.log.Warn().Str("file", name).Str("stage", string(stage)).Err(err).Msg("rectify failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "stage": stage})
		return
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, region, imaging.PNG); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode region", "message": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", out.Bytes())
}

// Scan identifies the card in the uploaded photograph.
func (s *Server) Scan(c *gin.Context) {
	name, buf, ok := s.upload(c)
	if !ok {
		return
	}
	rep := s.scanner.ScanBytes(c.Request.Context(), name, buf)
	if rep.Failed() {
		s.log.Warn().Str("file", name).Str("stage", rep.Stage).Err(rep.Err).Msg("scan failed")
		c.JSON(failureStatus(rep.Stage), gin.H{"error": rep.Err.Error(), "stage": rep.Stage})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"identifier": rep.Identifier,
		"text":       rep.Text,
		"confidence": rep.Confidence,
		"card":       rep.Card,
	})
}

// failureStatus maps a failed scan stage to an HTTP status. Problems with the
// photograph or its text are the client's; recognizer and catalog outages
// are not.
func failureStatus(stage string) int {
	switch stage {
	case scan.StageRecognize:
		return http.StatusBadGateway
	case scan.StageLookup, scan.StagePanic:
		return http.StatusInternalServerError
	case scan.StageCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) upload(c *gin.Context) (string, []byte, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read form file", "message": err.Error()})
		return "", nil, false
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open form file", "message": err.Error()})
		return "", nil, false
	}
	defer f.Close()
	buf, err := io.ReadAll(io.LimitReader(f, maxUpload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read form file", "message": err.Error()})
		return "", nil, false
	}
	return file.Filename, buf, true
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
