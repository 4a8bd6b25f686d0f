package messaging

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"attendance-app-server/internal/models"
	"attendance-app-server/internal/storage"
)

// Service orchestrates conversation lookup-or-create, message persistence,
// broadcast fan-out and attachment storage.
type Service struct {
	DB     *gorm.DB
	Files  storage.FileStore
	Policy AttachmentPolicy
}

// NewService creates a new messaging Service.
func NewService(db *gorm.DB, files storage.FileStore, policy AttachmentPolicy) *Service {
	return &Service{DB: db, Files: files, Policy: policy}
}

// AttachmentUpload carries one uploaded file through a send.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// SendInput is the request to send a single message. When ConversationID is
// set the recipient is taken from the conversation's other participant.
type SendInput struct {
	RecipientID    string
	RecipientRole  models.Role
	Content        string
	Category       string
	ConversationID string
	Attachments    []AttachmentUpload
}

// ConversationSummary is one row of a user's conversation list.
type ConversationSummary struct {
	ID            string          `json:"id"`
	Partner       models.UserRef  `json:"partner"`
	LastMessage   *models.Message `json:"lastMessage,omitempty"`
	UnreadCount   int64           `json:"unreadCount"`
	LastMessageAt time.Time       `json:"lastMessageAt"`
}

// Send validates permissions and attachments, resolves the conversation and
// persists the message with its attachments in one transaction. Nothing is
// written when any validation fails.
func (s *Service) Send(sender models.UserRef, in SendInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	category := in.Category
	if category == "" {
		category = "general"
	}

	conv, err := s.resolveConversation(sender, in)
	if err != nil {
		return nil, err
	}

	// All-or-nothing: every attachment must pass the policy before any write.
	for _, up := range in.Attachments {
		info := FileInfo{Name: up.FileName, Size: up.Size, ContentType: up.ContentType}
		if err := s.Policy.Check(sender.Role, info); err != nil {
			return nil, err
		}
	}

	msg := models.Message{
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		SenderRole:     sender.Role,
		Content:        content,
		Category:       category,
	}

	// Keys written to the file store before a failed commit are orphans;
	// collect them so they can be cleaned up on rollback.
	var storedKeys []string
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return &PersistenceError{Op: "create message", Err: err}
		}
		for _, up := range in.Attachments {
			key, err := s.Files.Save(up.FileName, up.ContentType, up.Data)
			if err != nil {
				return &PersistenceError{Op: "store attachment", Err: err}
			}
			storedKeys = append(storedKeys, key)
			att := models.Attachment{
				MessageID:   msg.ID,
				FileName:    up.FileName,
				FileSize:    up.Size,
				ContentType: up.ContentType,
				StorageKey:  key,
			}
			if err := tx.Create(&att).Error; err != nil {
				return &PersistenceError{Op: "create attachment", Err: err}
			}
			msg.Attachments = append(msg.Attachments, att)
		}
		if err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Update("last_message_at", msg.CreatedAt).Error; err != nil {
			return &PersistenceError{Op: "touch conversation", Err: err}
		}
		return nil
	})
	if err != nil {
		for _, key := range storedKeys {
			s.Files.Delete(key)
		}
		return nil, err
	}

	return &msg, nil
}

// resolveConversation finds the conversation a send belongs to. With an
// explicit conversation ID the sender must already be a participant; without
// one the (sender, recipient) pair is resolved or lazily created.
func (s *Service) resolveConversation(sender models.UserRef, in SendInput) (*models.Conversation, error) {
	if in.ConversationID != "" {
		var conv models.Conversation
		if err := s.DB.First(&conv, "id = ?", in.ConversationID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, &NotFoundError{Resource: "conversation"}
			}
			return nil, &PersistenceError{Op: "load conversation", Err: err}
		}
		if !conv.HasParticipant(sender.ID) {
			return nil, &PermissionError{
				Reason:  ReasonNotParticipant,
				Message: "you are not a participant of this conversation",
			}
		}
		_, partnerRole := conv.Partner(sender.ID)
		if err := AuthorizeSend(sender.Role, partnerRole); err != nil {
			return nil, err
		}
		return &conv, nil
	}

	if err := AuthorizeSend(sender.Role, in.RecipientRole); err != nil {
		return nil, err
	}
	if in.RecipientID == sender.ID {
		return nil, &ValidationError{Field: "recipientId", Reason: "cannot message yourself"}
	}

	recipient, err := models.FindUserRef(s.DB, in.RecipientID, in.RecipientRole)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: "recipient"}
		}
		return nil, &PersistenceError{Op: "load recipient", Err: err}
	}

	return s.findOrCreateConversation(sender, recipient)
}

// findOrCreateConversation resolves the unique conversation for an unordered
// participant pair. A unique index on the pair key turns the concurrent
// first-contact race into an insert conflict, which is treated as "already
// exists, re-read" rather than a failure.
func (s *Service) findOrCreateConversation(a, b models.UserRef) (*models.Conversation, error) {
	key := models.ConversationPairKey(a.ID, b.ID)

	var conv models.Conversation
	err := s.DB.First(&conv, "pair_key = ?", key).Error
	if err == nil {
		return &conv, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, &PersistenceError{Op: "load conversation", Err: err}
	}

	conv = models.Conversation{
		ParticipantAID:   a.ID,
		ParticipantARole: a.Role,
		ParticipantBID:   b.ID,
		ParticipantBRole: b.Role,
		PairKey:          key,
		LastMessageAt:    time.Now(),
	}
	if createErr := s.DB.Create(&conv).Error; createErr != nil {
		// Lost the race: the other participant created it first.
		if err := s.DB.First(&conv, "pair_key = ?", key).Error; err != nil {
			return nil, &PersistenceError{Op: "create conversation", Err: createErr}
		}
	}
	return &conv, nil
}

// Conversations returns the user's conversation summaries ordered by most
// recent message first.
func (s *Service) Conversations(userID string) ([]ConversationSummary, error) {
	var convs []models.Conversation
	err := s.DB.
		Where("participant_a_id = ? OR participant_b_id = ?", userID, userID).
		Order("last_message_at desc").
		Find(&convs).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list conversations", Err: err}
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		partnerID, partnerRole := conv.Partner(userID)
		partner, err := models.FindUserRef(s.DB, partnerID, partnerRole)
		if err != nil {
			// Partner account removed; keep the conversation with the bare ref.
			partner = models.UserRef{ID: partnerID, Role: partnerRole}
		}

		summary := ConversationSummary{
			ID:            conv.ID,
			Partner:       partner,
			LastMessageAt: conv.LastMessageAt,
		}

		var last models.Message
		if err := s.DB.Preload("Attachments").
			Where("conversation_id = ?", conv.ID).
			Order("created_at desc").
			First(&last).Error; err == nil {
			summary.LastMessage = &last
		}

		s.DB.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conv.ID, userID).
			Count(&summary.UnreadCount)

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Messages returns the full message history of one conversation in
// chronological order. The caller must be a participant.
func (s *Service) Messages(userID, conversationID string) ([]models.Message, error) {
	var conv models.Conversation
	if err := s.DB.First(&conv, "id = ?", conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: "conversation"}
		}
		return nil, &PersistenceError{Op: "load conversation", Err: err}
	}
	if !conv.HasParticipant(userID) {
		return nil, &PermissionError{
			Reason:  ReasonNotParticipant,
			Message: "you are not a participant of this conversation",
		}
	}

	var msgs []models.Message
	err := s.DB.Preload("Attachments").
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&msgs).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list messages", Err: err}
	}
	return msgs, nil
}

// BroadcastFailure records one recipient a broadcast could not reach.
type BroadcastFailure struct {
	StudentID string `json:"studentId"`
	Reason    string `json:"reason"`
}

// BroadcastResult reports the outcome of a class broadcast. Partial success
// is the documented contract, not an error state.
type BroadcastResult struct {
	SentCount int                `json:"sentCount"`
	Failures  []BroadcastFailure `json:"failures"`
}

// BroadcastToClass fans a message out to every student enrolled in the class,
// one independent message per (sender, student) conversation. Per-recipient
// failures are collected and returned; sends already written to other
// recipients are never rolled back.
func (s *Service) BroadcastToClass(sender models.UserRef, classID, content, category string, attachments []AttachmentUpload) (*BroadcastResult, error) {
	if sender.Role == models.RoleStudent {
		return nil, &PermissionError{
			Reason:  ReasonStudentBroadcast,
			Message: "students cannot broadcast to a class",
		}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	// The same files go to every recipient, so one failing file aborts the
	// whole broadcast before anything is written.
	for _, up := range attachments {
		info := FileInfo{Name: up.FileName, Size: up.Size, ContentType: up.ContentType}
		if err := s.Policy.Check(sender.Role, info); err != nil {
			return nil, err
		}
	}

	var class models.Class
	if err := s.DB.First(&class, "id = ?", classID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: "class"}
		}
		return nil, &PersistenceError{Op: "load class", Err: err}
	}

	var students []models.Student
	if err := s.DB.Where("class_id = ?", classID).Find(&students).Error; err != nil {
		return nil, &PersistenceError{Op: "list class students", Err: err}
	}
	if len(students) == 0 {
		return nil, &NotFoundError{Resource: "class students", Reason: "class has no enrolled students"}
	}

	result := &BroadcastResult{Failures: []BroadcastFailure{}}
	for _, st := range students {
		_, err := s.Send(sender, SendInput{
			RecipientID:   st.ID,
			RecipientRole: models.RoleStudent,
			Content:       content,
			Category:      category,
			Attachments:   attachments,
		})
		if err != nil {
			result.Failures = append(result.Failures, BroadcastFailure{
				StudentID: st.ID,
				Reason:    err.Error(),
			})
			continue
		}
		result.SentCount++
	}
	return result, nil
}
