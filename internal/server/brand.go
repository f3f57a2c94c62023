package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	branddomain "github.com/insightpulse/scout/internal/brand/domain"
)

type createBrandRequest struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Active  *bool    `json:"active"`
}

func (s *Server) CreateBrand(c *gin.Context) {
	var req createBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.brandSvc.Create(c.Request.Context(), branddomain.CreateRequest{
		Name:    strings.TrimSpace(req.Name),
		Aliases: req.Aliases,
		Active:  req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBrands(c *gin.Context) {
	resp, err := s.brandSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBrandByID(c *gin.Context) {
	resp, err := s.brandSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateBrandRequest struct {
	Name    *string   `json:"name"`
	Aliases *[]string `json:"aliases"`
	Active  *bool     `json:"active"`
}

func (s *Server) UpdateBrand(c *gin.Context) {
	var req updateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.brandSvc.Update(c.Request.Context(), branddomain.UpdateRequest{
		ID:      strings.TrimSpace(c.Param("id")),
		Name:    req.Name,
		Aliases: req.Aliases,
		Active:  req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBrand(c *gin.Context) {
	if err := s.brandSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
