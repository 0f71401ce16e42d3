package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/strafezone/portal/gameserver-service/internal/models"
	"github.com/strafezone/portal/gameserver-service/internal/repository"
	"github.com/strafezone/portal/gameserver-service/internal/service"
)

type Handler struct {
	instances *service.InstanceService
}

func NewHandler(instances *service.InstanceService) *Handler {
	return &Handler{instances: instances}
}

// ==================== User API Handlers ====================

// CreateInstance provisions a temporary server for the caller
func (h *Handler) CreateInstance(c *gin.Context) {
	steamID := c.GetString("steamID")

	var req models.CreateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inst, host, err := h.instances.Create(c.Request.Context(), steamID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrActiveInstance):
			c.JSON(http.StatusConflict, gin.H{"error": "you already have an active server"})
		case errors.Is(err, service.ErrNoCapacity):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no server capacity available, please try again later"})
		case errors.Is(err, service.ErrNoCredential):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no game license available, please try again later"})
		default:
			// Internal host details stay out of the response
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server provisioning failed, please try again later"})
		}
		return
	}

	c.JSON(http.StatusCreated, models.CreateInstanceResponse{
		InstanceID:  inst.ID,
		Host:        host.Address,
		Port:        inst.Port,
		AdminSecret: inst.AdminSecret,
		ExpiresAt:   inst.ExpiresAt.Format(time.RFC3339),
	})
}

// GetInstance returns the caller's instance with live status
func (h *Handler) GetInstance(c *gin.Context) {
	steamID := c.GetString("steamID")
	instanceID := c.Param("id")

	detail, err := h.instances.Describe(c.Request.Context(), instanceID, steamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "server not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load server"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// TerminateInstance closes the caller's lease and tears the server down
func (h *Handler) TerminateInstance(c *gin.Context) {
	steamID := c.GetString("steamID")
	instanceID := c.Param("id")

	if err := h.instances.Terminate(c.Request.Context(), instanceID, steamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "server not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to terminate server"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "terminated"})
}

// ListMyInstances returns the caller's non-expired instances
func (h *Handler) ListMyInstances(c *gin.Context) {
	steamID := c.GetString("steamID")

	summaries, err := h.instances.ListMine(c.Request.Context(), steamID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list servers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"servers": summaries})
}

// ==================== Public API Handlers ====================

// InstanceStatus returns the live status without owner details
func (h *Handler) InstanceStatus(c *gin.Context) {
	instanceID := c.Param("id")

	live, err := h.instances.Status(c.Request.Context(), instanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "server not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query server"})
		return
	}

	c.JSON(http.StatusOK, live)
}

// ==================== Internal API Handlers ====================

// CreateLobby binds a portal room to an instance
func (h *Handler) CreateLobby(c *gin.Context) {
	var req models.CreateLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lobby, err := h.instances.CreateLobby(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lobby"})
		return
	}

	c.JSON(http.StatusCreated, models.LobbyResponse{
		LobbyID:    lobby.ID,
		Name:       lobby.Name,
		InstanceID: lobby.InstanceID,
	})
}

// DeleteLobby removes a lobby and cascades to its bound instance
func (h *Handler) DeleteLobby(c *gin.Context) {
	lobbyID := c.Param("id")

	if err := h.instances.DeleteLobby(c.Request.Context(), lobbyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lobby not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lobby"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
