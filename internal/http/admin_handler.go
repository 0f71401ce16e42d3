package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/strafezone/portal/gameserver-service/internal/models"
	"github.com/strafezone/portal/gameserver-service/internal/repository"
	"github.com/strafezone/portal/gameserver-service/internal/service"
)

// AdminHandler serves host and credential management plus the manual
// reap trigger.
type AdminHandler struct {
	admin  *service.AdminService
	reaper *service.Reaper
}

func NewAdminHandler(admin *service.AdminService, reaper *service.Reaper) *AdminHandler {
	return &AdminHandler{admin: admin, reaper: reaper}
}

// ==================== Host Handlers ====================

func (h *AdminHandler) ListHosts(c *gin.Context) {
	hosts, err := h.admin.ListHosts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hosts": hosts})
}

func (h *AdminHandler) CreateHost(c *gin.Context) {
	var req models.HostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	host, err := h.admin.CreateHost(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": host.ID})
}

func (h *AdminHandler) UpdateHost(c *gin.Context) {
	var req models.HostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.admin.UpdateHost(c.Request.Context(), c.Param("id"), &req); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "host not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *AdminHandler) DeleteHost(c *gin.Context) {
	if err := h.admin.DeleteHost(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "host not found"})
		case errors.Is(err, service.ErrInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "host still has active servers"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ==================== Credential Handlers ====================

func (h *AdminHandler) ListCredentials(c *gin.Context) {
	creds, err := h.admin.ListCredentials(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"credentials": creds})
}

func (h *AdminHandler) CreateCredential(c *gin.Context) {
	var req models.CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cred, err := h.admin.CreateCredential(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": cred.ID})
}

func (h *AdminHandler) SetCredentialActive(c *gin.Context) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.admin.SetCredentialActive(c.Request.Context(), c.Param("id"), req.Active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "credential not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *AdminHandler) DeleteCredential(c *gin.Context) {
	if err := h.admin.DeleteCredential(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "credential not found"})
		case errors.Is(err, service.ErrInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "credential is bound to an active server"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ==================== Instance Handlers ====================

// InstanceLogs returns the provisioning audit trail for an instance
func (h *AdminHandler) InstanceLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.admin.InstanceLogs(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// ==================== Maintenance Handlers ====================

// TriggerReap runs one reaper sweep on demand
func (h *AdminHandler) TriggerReap(c *gin.Context) {
	reaped, err := h.reaper.SweepExpired(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reaped": reaped})
}
