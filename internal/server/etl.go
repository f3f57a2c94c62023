package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoadPending runs the landing-to-bronze load synchronously. Re-invocation
// is the retry mechanism, so a failed call can simply be repeated.
func (s *Server) LoadPending(c *gin.Context) {
	inserted, err := s.bronzeSvc.LoadPending(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

// PromoteNew runs the bronze-to-silver promotion synchronously.
func (s *Server) PromoteNew(c *gin.Context) {
	inserted, err := s.silverSvc.PromoteNew(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

// GenerateRecommendations derives advisories from the current gold state.
func (s *Server) GenerateRecommendations(c *gin.Context) {
	generated, err := s.recoSvc.Generate(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generated": generated})
}

func (s *Server) ListBronzeRecords(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	records, err := s.bronzeSvc.List(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) ListSilverTransactions(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	transactions, err := s.silverSvc.List(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transactions})
}
