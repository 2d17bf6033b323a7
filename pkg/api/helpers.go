package api

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/zentalk-didcomm/pkg/crypto"
	"github.com/ZentaChain/zentalk-didcomm/pkg/messaging"
)

// HashRequest asks for the integrity hash of some media content
type HashRequest struct {
	Data      string `json:"data" binding:"required"` // Base64 encoded content
	Algorithm string `json:"algorithm"`               // blake2b-256 (default) or sha2-256
}

// HashResponse carries the multibase multihash and the prefixed hex digest
type HashResponse struct {
	Success   bool   `json:"success"`
	Algorithm string `json:"algorithm"`
	Hash      string `json:"hash"`
	Digest    string `json:"digest"`
	Size      int    `json:"size"`
}

// KeyResponse carries a freshly generated key
type KeyResponse struct {
	Success bool                 `json:"success"`
	Key     messaging.JSONWebKey `json:"key"`
}

// handleMediaHash handles POST /api/v1/media/hash
func (s *Server) handleMediaHash(c *gin.Context) {
	var req HashRequest
	if !bindJSON(c, &req) {
		return
	}

	algo, err := crypto.ParseHashAlgorithm(req.Algorithm)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Unsupported algorithm",
			Message: err.Error(),
			Code:    "invalid_request",
		})
		return
	}

	// Decode base64 data
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid data encoding",
			Message: "Data must be base64 encoded",
			Code:    "invalid_request",
		})
		return
	}

	hash, err := crypto.ContentHash(algo, data)
	if err != nil {
		s.internalError(c, "Failed to hash content", err)
		return
	}

	digest, err := crypto.PrefixedDigest(algo, data)
	if err != nil {
		s.internalError(c, "Failed to hash content", err)
		return
	}

	c.JSON(http.StatusOK, HashResponse{
		Success:   true,
		Algorithm: string(algo),
		Hash:      hash,
		Digest:    digest,
		Size:      len(data),
	})
}

// handleGenerateKey handles POST /api/v1/keys
func (s *Server) handleGenerateKey(c *gin.Context) {
	key, err := messaging.GenerateJSONWebKey()
	if err != nil {
		s.internalError(c, "Failed to generate key", err)
		return
	}

	c.JSON(http.StatusCreated, KeyResponse{
		Success: true,
		Key:     key,
	})
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.log.WithError(err).Error(msg)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   msg,
		Message: err.Error(),
	})
}
