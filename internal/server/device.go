package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	devicedomain "github.com/insightpulse/scout/internal/device/domain"
)

type createDeviceRequest struct {
	DeviceID string  `json:"device_id"`
	Name     string  `json:"name"`
	StoreID  *string `json:"store_id"`
	Location *string `json:"location"`
	Active   *bool   `json:"active"`
}

func (s *Server) CreateDevice(c *gin.Context) {
	var req createDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.deviceSvc.Create(c.Request.Context(), devicedomain.CreateRequest{
		DeviceID: strings.TrimSpace(req.DeviceID),
		Name:     strings.TrimSpace(req.Name),
		StoreID:  req.StoreID,
		Location: req.Location,
		Active:   req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDevices(c *gin.Context) {
	resp, err := s.deviceSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDeviceByID(c *gin.Context) {
	resp, err := s.deviceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateDeviceRequest struct {
	Name     *string `json:"name"`
	StoreID  *string `json:"store_id"`
	Location *string `json:"location"`
	Active   *bool   `json:"active"`
}

func (s *Server) UpdateDevice(c *gin.Context) {
	var req updateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.deviceSvc.Update(c.Request.Context(), devicedomain.UpdateRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Name:     req.Name,
		StoreID:  req.StoreID,
		Location: req.Location,
		Active:   req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDevice(c *gin.Context) {
	if err := s.deviceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
