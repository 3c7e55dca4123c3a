// Package history is the request-style read and mutation surface:
// conversation history, the two deletion visibilities and reaction
// toggling, for clients that are not on a live socket.
package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ageniuscoder/blinkchat/internal/auth"
	"github.com/ageniuscoder/blinkchat/internal/chatid"
	"github.com/ageniuscoder/blinkchat/internal/httpx"
	"github.com/ageniuscoder/blinkchat/internal/store"
	"github.com/ageniuscoder/blinkchat/internal/utils"
)

type Service struct {
	Store *store.Store
}

type reactReq struct {
	Reaction string `json:"reaction" binding:"required"`
}

func Register(rg *gin.RouterGroup, st *store.Store) {
	s := Service{Store: st}
	rg.GET("/messages/:user", s.list)
	rg.DELETE("/messages/:user/:messageId/me", s.deleteForMe)
	rg.DELETE("/messages/:user/:messageId/everyone", s.deleteForEveryone)
	rg.POST("/reactions/:user/:messageId", s.toggleReaction)
	rg.GET("/reactions/:user/:messageId", s.listReactions)
}

func (s Service) list(c *gin.Context) {
	uid := auth.MustUserID(c)
	chatID := chatid.ChatID(uid, c.Param("user"))

	msgs, err := s.Store.History(c.Request.Context(), chatID, uid)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	httpx.OK(c, msgs)
}

func (s Service) deleteForMe(c *gin.Context) {
	uid := auth.MustUserID(c)
	chatID := chatid.ChatID(uid, c.Param("user"))
	mid, ok := messageID(c)
	if !ok {
		return
	}

	if err := s.Store.HideForViewer(c.Request.Context(), chatID, mid, uid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Err(c, http.StatusNotFound, "Message not found")
			return
		}
		httpx.Err(c, http.StatusInternalServerError, "Failed to delete message")
		return
	}
	httpx.OK(c, gin.H{"success": true, "message": "Message deleted for you"})
}

func (s Service) deleteForEveryone(c *gin.Context) {
	uid := auth.MustUserID(c)
	chatID := chatid.ChatID(uid, c.Param("user"))
	mid, ok := messageID(c)
	if !ok {
		return
	}

	// Authorization runs against the persisted sender field, not any
	// client-supplied claim.
	m, err := s.Store.Find(c.Request.Context(), chatID, mid)
	if errors.Is(err, store.ErrNotFound) {
		httpx.Err(c, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "Failed to delete message")
		return
	}
	if m.Sender != uid {
		httpx.Err(c, http.StatusForbidden, "Only the sender can delete for everyone")
		return
	}

	if err := s.Store.EraseForEveryone(c.Request.Context(), chatID, mid); err != nil {
		httpx.Err(c, http.StatusInternalServerError, "Failed to delete message")
		return
	}
	httpx.OK(c, gin.H{"success": true, "message": "Message deleted for everyone"})
}

func (s Service) toggleReaction(c *gin.Context) {
	uid := auth.MustUserID(c)
	chatID := chatid.ChatID(uid, c.Param("user"))
	mid, ok := messageID(c)
	if !ok {
		return
	}

	var req reactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			httpx.Err(c, http.StatusBadRequest, utils.ValidationErr(validationErrors))
			return
		}
		httpx.Err(c, http.StatusBadRequest, err.Error())
		return
	}

	current, err := s.Store.ToggleReaction(c.Request.Context(), chatID, mid, uid, req.Reaction)
	if errors.Is(err, store.ErrNotFound) {
		httpx.Err(c, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "Failed to toggle reaction")
		return
	}

	reactions, err := s.Store.ReactionsFor(c.Request.Context(), chatID, mid)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "Failed to toggle reaction")
		return
	}
	if reactions == nil {
		reactions = []store.Reaction{}
	}
	httpx.OK(c, gin.H{"success": true, "reactions": reactions, "userReaction": current})
}

func (s Service) listReactions(c *gin.Context) {
	uid := auth.MustUserID(c)
	chatID := chatid.ChatID(uid, c.Param("user"))
	mid, ok := messageID(c)
	if !ok {
		return
	}

	reactions, err := s.Store.ReactionsFor(c.Request.Context(), chatID, mid)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "Failed to fetch reactions")
		return
	}
	if reactions == nil {
		reactions = []store.Reaction{}
	}
	httpx.OK(c, reactions)
}

func messageID(c *gin.Context) (int64, bool) {
	mid, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil {
		httpx.Err(c, http.StatusBadRequest, "invalid message id")
		return 0, false
	}
	return mid, true
}
