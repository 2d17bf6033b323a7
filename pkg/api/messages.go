package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
	"github.com/ZentaChain/zentalk-didcomm/pkg/messaging"
	"github.com/ZentaChain/zentalk-didcomm/pkg/storage"
)

// MessageResponse is returned when a message was built
type MessageResponse struct {
	Success  bool             `json:"success"`
	Message  *didcomm.Message `json:"message"`
	Archived bool             `json:"archived"`
}

// ListResponse is returned by the archive listing
type ListResponse struct {
	Success  bool                     `json:"success"`
	Count    int                      `json:"count"`
	Messages []*storage.StoredMessage `json:"messages"`
}

// handleCreateDirect handles POST /api/v1/messages/direct
func (s *Server) handleCreateDirect(c *gin.Context) {
	var req messaging.DirectMessageOptions
	if !bindJSON(c, &req) {
		return
	}
	msg, err := messaging.CreateDirectMessage(req)
	s.respondBuilt(c, msg, err)
}

// handleCreateKeySharing handles POST /api/v1/messages/key-sharing
func (s *Server) handleCreateKeySharing(c *gin.Context) {
	var req messaging.KeySharingMessageOptions
	if !bindJSON(c, &req) {
		return
	}
	msg, err := messaging.CreateKeySharingMessage(req)
	s.respondBuilt(c, msg, err)
}

// handleCreateMediaSharing handles POST /api/v1/messages/media-sharing
func (s *Server) handleCreateMediaSharing(c *gin.Context) {
	var req messaging.MediaItemsMessageOptions
	if !bindJSON(c, &req) {
		return
	}
	msg, err := messaging.CreateMediaItemMessage(req)
	s.respondBuilt(c, msg, err)
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
			Code:    "invalid_request",
		})
		return false
	}
	return true
}

// respondBuilt archives a freshly built message (when a store is configured)
// and writes it back to the client.
func (s *Server) respondBuilt(c *gin.Context, msg *didcomm.Message, err error) {
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Failed to build message",
			Message: err.Error(),
			Code:    buildErrorCode(err),
		})
		return
	}

	archived := false
	if s.store != nil {
		if _, err := s.store.SaveMessage(msg); err != nil {
			if errors.Is(err, storage.ErrInvalidMessage) {
				c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
					Error:   "Invalid message",
					Message: err.Error(),
					Code:    "invalid_message",
				})
				return
			}
			if errors.Is(err, storage.ErrMessageExists) {
				c.JSON(http.StatusConflict, ErrorResponse{
					Error:   "Message already archived",
					Message: msg.ID,
					Code:    "duplicate_id",
				})
				return
			}

			s.log.WithError(err).WithField("id", msg.ID).Error("Failed to archive message")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "Failed to archive message",
				Message: err.Error(),
				Code:    "storage",
			})
			return
		}
		archived = true
	}

	s.log.WithFields(logrus.Fields{
		"id":       msg.ID,
		"type":     msg.Type,
		"archived": archived,
	}).Debug("Built message")

	c.JSON(http.StatusCreated, MessageResponse{
		Success:  true,
		Message:  msg,
		Archived: archived,
	})
}

func buildErrorCode(err error) string {
	switch {
	case errors.Is(err, messaging.ErrMissingMessage):
		return "missing_message"
	case errors.Is(err, messaging.ErrMissingKey):
		return "missing_key"
	case errors.Is(err, messaging.ErrMissingMediaItem):
		return "missing_media_item"
	case errors.Is(err, messaging.ErrSerialization):
		return "serialization"
	case errors.Is(err, messaging.ErrMissingBody):
		return "missing_body"
	default:
		return "build_failed"
	}
}

// requireStore writes 503 when archiving is disabled
func (s *Server) requireStore(c *gin.Context) bool {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "Archive disabled",
			Message: "Server was started without a message store",
			Code:    "storage_disabled",
		})
		return false
	}
	return true
}

// handleListMessages handles GET /api/v1/messages
func (s *Server) handleListMessages(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	opts := storage.ListOptions{Type: c.Query("type")}
	for name, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid " + name,
				Message: name + " must be a non-negative integer",
				Code:    "invalid_request",
			})
			return
		}
		*dst = n
	}

	msgs, err := s.store.ListMessages(opts)
	if err != nil {
		s.log.WithError(err).Error("Failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list messages",
			Message: err.Error(),
			Code:    "storage",
		})
		return
	}
	if msgs == nil {
		msgs = []*storage.StoredMessage{}
	}

	c.JSON(http.StatusOK, ListResponse{
		Success:  true,
		Count:    len(msgs),
		Messages: msgs,
	})
}

// handleGetMessage handles GET /api/v1/messages/:id
func (s *Server) handleGetMessage(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	stored, err := s.store.GetMessage(c.Param("id"))
	if err != nil {
		s.storageError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    stored,
	})
}

// handleDeleteMessage handles DELETE /api/v1/messages/:id
func (s *Server) handleDeleteMessage(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	id := c.Param("id")
	if err := s.store.DeleteMessage(id); err != nil {
		s.storageError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Message deleted",
	})
}

func (s *Server) storageError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Message not found",
			Message: c.Param("id"),
			Code:    "not_found",
		})
		return
	}

	s.log.WithError(err).Error("Archive operation failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "Archive operation failed",
		Message: err.Error(),
		Code:    "storage",
	})
}
