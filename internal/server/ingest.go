package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	landingdomain "github.com/insightpulse/scout/internal/landing/domain"
)

type ingestRequest struct {
	Payload    map[string]any `json:"payload"`
	SourcePath string         `json:"source_path"`
}

// Ingest appends one raw payload to the landing buffer. The payload is
// stored untouched; every interpretation decision belongs to the bronze
// loader.
func (s *Server) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.landingSvc.Append(c.Request.Context(), landingdomain.AppendRequest{
		Payload:    req.Payload,
		SourcePath: strings.TrimSpace(req.SourcePath),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": resp})
}

// LandingPending reports the current landing buffer depth.
func (s *Server) LandingPending(c *gin.Context) {
	count, err := s.landingSvc.PendingCount(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": count})
}
