package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	golddomain "github.com/insightpulse/scout/internal/gold/domain"
)

func (s *Server) DailyRevenue(c *gin.Context) {
	s.goldQuery(c, func(query golddomain.Query) (any, error) {
		return s.goldSvc.DailyRevenue(c.Request.Context(), query)
	})
}

func (s *Server) BrandPerformance(c *gin.Context) {
	s.goldQuery(c, func(query golddomain.Query) (any, error) {
		return s.goldSvc.BrandPerformance(c.Request.Context(), query)
	})
}

func (s *Server) CategoryMix(c *gin.Context) {
	s.goldQuery(c, func(query golddomain.Query) (any, error) {
		return s.goldSvc.CategoryMix(c.Request.Context(), query)
	})
}

func (s *Server) StoreActivity(c *gin.Context) {
	s.goldQuery(c, func(query golddomain.Query) (any, error) {
		return s.goldSvc.StoreActivity(c.Request.Context(), query)
	})
}

func (s *Server) goldQuery(c *gin.Context, fetch func(golddomain.Query) (any, error)) {
	query, err := parseGoldQuery(c.Query("start"), c.Query("end"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := fetch(query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}
