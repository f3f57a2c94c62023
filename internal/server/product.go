package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	productdomain "github.com/insightpulse/scout/internal/product/domain"
)

type createProductRequest struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	BrandID    *string `json:"brand_id"`
	CategoryID *string `json:"category_id"`
	Active     *bool   `json:"active"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateRequest{
		SKU:        strings.TrimSpace(req.SKU),
		Name:       strings.TrimSpace(req.Name),
		BrandID:    req.BrandID,
		CategoryID: req.CategoryID,
		Active:     req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	resp, err := s.productSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateProductRequest struct {
	Name       *string `json:"name"`
	BrandID    *string `json:"brand_id"`
	CategoryID *string `json:"category_id"`
	Active     *bool   `json:"active"`
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Update(c.Request.Context(), productdomain.UpdateRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		Name:       req.Name,
		BrandID:    req.BrandID,
		CategoryID: req.CategoryID,
		Active:     req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type createProductCategoryRequest struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

func (s *Server) CreateProductCategory(c *gin.Context) {
	var req createProductCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.CreateCategory(c.Request.Context(), productdomain.CreateCategoryRequest{
		Name:     strings.TrimSpace(req.Name),
		Keywords: req.Keywords,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProductCategories(c *gin.Context) {
	resp, err := s.productSvc.ListCategories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
