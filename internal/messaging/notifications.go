package messaging

import (
	"time"

	"gorm.io/gorm"

	"attendance-app-server/internal/models"
)

// Notification is one entry of a user's unread feed, derived from unread
// messages across all of the user's conversations. Nothing is persisted
// beyond the message read flag.
type Notification struct {
	MessageID      string         `json:"messageId"`
	ConversationID string         `json:"conversationId"`
	Sender         models.UserRef `json:"sender"`
	Category       string         `json:"category"`
	Preview        string         `json:"preview"`
	CreatedAt      time.Time      `json:"createdAt"`
}

const previewRunes = 120

// userConversationIDs is the subquery selecting every conversation the user
// participates in.
func (s *Service) userConversationIDs(userID string) *gorm.DB {
	return s.DB.Model(&models.Conversation{}).
		Select("id").
		Where("participant_a_id = ? OR participant_b_id = ?", userID, userID)
}

// UnreadCount returns the number of unread messages addressed to the user.
func (s *Service) UnreadCount(userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Message{}).
		Where("conversation_id IN (?)", s.userConversationIDs(userID)).
		Where("sender_id <> ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, &PersistenceError{Op: "count unread", Err: err}
	}
	return count, nil
}

// Notifications returns the user's unread messages as a feed, newest first.
func (s *Service) Notifications(userID string) ([]Notification, error) {
	var msgs []models.Message
	err := s.DB.
		Where("conversation_id IN (?)", s.userConversationIDs(userID)).
		Where("sender_id <> ? AND read_at IS NULL", userID).
		Order("created_at desc").
		Find(&msgs).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list notifications", Err: err}
	}

	feed := make([]Notification, 0, len(msgs))
	for _, m := range msgs {
		sender, err := models.FindUserRef(s.DB, m.SenderID, m.SenderRole)
		if err != nil {
			sender = models.UserRef{ID: m.SenderID, Role: m.SenderRole}
		}
		feed = append(feed, Notification{
			MessageID:      m.ID,
			ConversationID: m.ConversationID,
			Sender:         sender,
			Category:       m.Category,
			Preview:        truncate(m.Content, previewRunes),
			CreatedAt:      m.CreatedAt,
		})
	}
	return feed, nil
}

// MarkRead sets the read flag on a message. Only the recipient may mark it;
// marking an already-read message succeeds silently.
func (s *Service) MarkRead(messageID, userID string) error {
	var msg models.Message
	if err := s.DB.First(&msg, "id = ?", messageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &NotFoundError{Resource: "message"}
		}
		return &PersistenceError{Op: "load message", Err: err}
	}

	var conv models.Conversation
	if err := s.DB.First(&conv, "id = ?", msg.ConversationID).Error; err != nil {
		return &PersistenceError{Op: "load conversation", Err: err}
	}
	if msg.SenderID == userID || !conv.HasParticipant(userID) {
		return &PermissionError{
			Reason:  ReasonNotRecipient,
			Message: "only the recipient can mark this message as read",
		}
	}

	if msg.ReadAt != nil {
		return nil // idempotent
	}

	now := time.Now()
	if err := s.DB.Model(&msg).Update("read_at", &now).Error; err != nil {
		return &PersistenceError{Op: "mark read", Err: err}
	}
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
