package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/ledgervox/internal/engine"
	"github.com/Veraticus/ledgervox/internal/model"
)

type commandRequest struct {
	UserID string `json:"userId" binding:"required"`
	Input  string `json:"input" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleVoiceCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId and input are required"})
		return
	}

	reply := s.engine.Process(c.Request.Context(), req.UserID, req.Input)
	c.JSON(http.StatusOK, commandResponse(reply))
}

// handleNaturalExpense is the add-only variant: the caller has already
// decided this is an expense, so classification is skipped.
func (s *Server) handleNaturalExpense(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId and input are required"})
		return
	}

	reply := s.engine.ProcessAs(c.Request.Context(), req.UserID, req.Input, model.IntentAddExpense)
	c.JSON(http.StatusOK, commandResponse(reply))
}

func (s *Server) handleGetExpenses(c *gin.Context) {
	userID := c.Param("userId")

	expenses, err := s.storage.GetExpenses(c.Request.Context(), userID)
	if err != nil {
		slog.Error("failed to load expenses", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load expenses"})
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"expenses": expenses,
		"count":    len(expenses),
	})
}

func (s *Server) handleClearExpenses(c *gin.Context) {
	userID := c.Param("userId")

	if err := s.storage.ClearExpenses(c.Request.Context(), userID); err != nil {
		slog.Error("failed to clear expenses", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to clear expenses"})
		return
	}
	if err := s.storage.ClearChatMessages(c.Request.Context(), userID); err != nil {
		slog.Warn("failed to clear chat history", "user_id", userID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleGetChat(c *gin.Context) {
	userID := c.Param("userId")

	messages, err := s.storage.GetChatMessages(c.Request.Context(), userID)
	if err != nil {
		slog.Error("failed to load chat history", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load chat history"})
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
		"count":    len(messages),
	})
}

func commandResponse(reply engine.Reply) gin.H {
	resp := gin.H{
		"success": reply.Success,
		"message": reply.Message,
		"intent":  reply.Intent,
	}
	if reply.Expense != nil {
		resp["data"] = gin.H{"expense": reply.Expense}
	}
	return resp
}
