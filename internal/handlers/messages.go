package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"attendance-app-server/internal/audit"
	"attendance-app-server/internal/messaging"
	"attendance-app-server/internal/middleware"
	"attendance-app-server/internal/models"
	"attendance-app-server/internal/storage"
	"attendance-app-server/internal/utils"
)

// MessageHandler handles messaging requests, delegating the domain rules to
// the messaging service.
type MessageHandler struct {
	DB      *gorm.DB
	Service *messaging.Service
	Files   storage.FileStore
	Audit   *audit.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB, svc *messaging.Service, files storage.FileStore, auditLog *audit.Logger) *MessageHandler {
	return &MessageHandler{DB: db, Service: svc, Files: files, Audit: auditLog}
}

func currentUser(c *gin.Context) (models.UserRef, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return models.UserRef{}, false
	}
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		return models.UserRef{}, false
	}
	return models.UserRef{ID: userID, Role: role}, true
}

// readUploads extracts the attachments[] part of a multipart request.
// Non-multipart requests simply carry no attachments.
func readUploads(c *gin.Context) ([]messaging.AttachmentUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	files := form.File["attachments"]
	uploads := make([]messaging.AttachmentUpload, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", header.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", header.Filename, err)
		}
		uploads = append(uploads, messaging.AttachmentUpload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        data,
		})
	}
	return uploads, nil
}

// GetConversations lists the caller's conversations, most recent first.
func (h *MessageHandler) GetConversations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	summaries, err := h.Service.Conversations(user.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.Success(c, "Conversations fetched successfully", summaries)
}

// GetMessages returns the message history of one conversation.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	conversationID := c.Query("conversationId")
	if conversationID == "" {
		utils.BadRequest(c, "conversationId query parameter is required")
		return
	}

	msgs, err := h.Service.Messages(user.ID, conversationID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.Success(c, "Messages fetched successfully", msgs)
}

// SendMessage handles a multipart direct-message send: recipientId,
// recipientRole, content, category?, conversationId?, attachments[].
func (h *MessageHandler) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	recipientID := c.PostForm("recipientId")
	recipientRoleStr := c.PostForm("recipientRole")
	content := c.PostForm("content")
	conversationID := c.PostForm("conversationId")

	if conversationID == "" {
		if recipientID == "" {
			utils.BadRequest(c, "recipientId is required")
			return
		}
		if recipientRoleStr == "" {
			utils.BadRequest(c, "recipientRole is required")
			return
		}
	}
	var recipientRole models.Role
	if recipientRoleStr != "" {
		var err error
		recipientRole, err = models.ParseRole(recipientRoleStr)
		if err != nil {
			utils.BadRequest(c, "Invalid recipientRole: "+recipientRoleStr)
			return
		}
	}

	uploads, err := readUploads(c)
	if err != nil {
		utils.BadRequest(c, "Invalid multipart payload: "+err.Error())
		return
	}

	msg, err := h.Service.Send(user, messaging.SendInput{
		RecipientID:    recipientID,
		RecipientRole:  recipientRole,
		Content:        content,
		Category:       c.PostForm("category"),
		ConversationID: conversationID,
		Attachments:    uploads,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.Created(c, "Message sent successfully", msg)
}

// BroadcastMessage handles a multipart class broadcast: classId, content,
// category?, attachments[]. Office and teachers only; the service enforces
// this again independently of the route guard.
func (h *MessageHandler) BroadcastMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	classID := c.PostForm("classId")
	if classID == "" {
		utils.BadRequest(c, "classId is required")
		return
	}

	uploads, err := readUploads(c)
	if err != nil {
		utils.BadRequest(c, "Invalid multipart payload: "+err.Error())
		return
	}

	result, err := h.Service.BroadcastToClass(user, classID, c.PostForm("content"), c.PostForm("category"), uploads)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	h.Audit.Record(user.ID, string(user.Role), "broadcast",
		fmt.Sprintf("class=%s sent=%d failed=%d", classID, result.SentCount, len(result.Failures)))
	utils.Created(c, "Broadcast completed", result)
}

// MarkMessageRead marks one message as read for the caller. Idempotent.
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Service.MarkRead(c.Param("messageId"), user.ID); err != nil {
		respondDomainError(c, err)
		return
	}
	utils.Success(c, "Message marked as read", nil)
}

// DownloadAttachment streams one attachment's bytes to a conversation
// participant.
func (h *MessageHandler) DownloadAttachment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var att models.Attachment
	if err := h.DB.First(&att, "id = ?", c.Param("attachmentId")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Attachment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var msg models.Message
	if err := h.DB.First(&msg, "id = ?", att.MessageID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	var conv models.Conversation
	if err := h.DB.First(&conv, "id = ?", msg.ConversationID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if !conv.HasParticipant(user.ID) {
		utils.Forbidden(c, "You are not a participant of this conversation.")
		return
	}

	reader, err := h.Files.Open(att.StorageKey)
	if err != nil {
		utils.InternalServerError(c, "Failed to open attachment: "+err.Error())
		return
	}
	defer reader.Close()

	c.Writer.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))
	c.Writer.Header().Set("Content-Type", att.ContentType)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers already written; nothing sensible left to send.
		return
	}
}
