package models

import (
	"strings"
	"time"
)

// Conversation represents the message thread between exactly two users.
// PairKey is the normalized unordered pair of participant IDs; the unique
// index on it is what guarantees at most one conversation per pair even
// under concurrent first-contact sends.
type Conversation struct {
	BaseModel
	ParticipantAID   string    `gorm:"size:36;index;not null" json:"participantAId"`
	ParticipantARole Role      `gorm:"size:20;not null" json:"participantARole"`
	ParticipantBID   string    `gorm:"size:36;index;not null" json:"participantBId"`
	ParticipantBRole Role      `gorm:"size:20;not null" json:"participantBRole"`
	PairKey          string    `gorm:"size:80;uniqueIndex;not null" json:"-"`
	LastMessageAt    time.Time `gorm:"index" json:"lastMessageAt"`

	// Relations
	Messages []Message `gorm:"foreignKey:ConversationID" json:"-"`
}

// ConversationPairKey builds the normalized key for an unordered ID pair.
func ConversationPairKey(idA, idB string) string {
	if strings.Compare(idA, idB) > 0 {
		idA, idB = idB, idA
	}
	return idA + ":" + idB
}

// HasParticipant reports whether the given user is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantAID == userID || c.ParticipantBID == userID
}

// Partner returns the participant other than the given user.
func (c *Conversation) Partner(userID string) (string, Role) {
	if c.ParticipantAID == userID {
		return c.ParticipantBID, c.ParticipantBRole
	}
	return c.ParticipantAID, c.ParticipantARole
}

// Message represents a single message within a conversation. Immutable once
// created except for ReadAt, the recipient's read flag (conversations are
// two-party, so the recipient is always the non-sender).
type Message struct {
	BaseModel
	ConversationID string     `gorm:"size:36;index;not null" json:"conversationId"`
	SenderID       string     `gorm:"size:36;index;not null" json:"senderId"`
	SenderRole     Role       `gorm:"size:20;not null" json:"senderRole"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	Category       string     `gorm:"size:50;default:'general'" json:"category"`
	ReadAt         *time.Time `json:"readAt,omitempty"`

	// Relations
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
	Attachments  []Attachment `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
}

// Attachment represents a file attached to a message. The bytes themselves
// live with the file-storage collaborator; StorageKey is its stable reference.
type Attachment struct {
	BaseModel
	MessageID   string `gorm:"size:36;index;not null" json:"messageId"`
	FileName    string `gorm:"size:255;not null" json:"fileName"`
	FileSize    int64  `gorm:"not null" json:"fileSize"`
	ContentType string `gorm:"size:100" json:"contentType"`
	StorageKey  string `gorm:"size:255;not null" json:"-"`
}
