package messaging

import "time"

// Message is a mailbox item. Replies are separate rows pointing at a parent.
// Deleting a parent leaves its replies in place.
type Message struct {
	ID        string      `json:"id" gorm:"primaryKey;size:36"`
	Recipient string      `json:"recipient" gorm:"size:255;not null"`
	Subject   string      `json:"subject" gorm:"size:255;not null"`
	Body      string      `json:"body" gorm:"type:text;not null"`
	Type      MessageType `json:"type" gorm:"size:16;not null;index"`
	Read      bool        `json:"read" gorm:"column:is_read;not null;default:false"`
	ParentID  *string     `json:"parentId,omitempty" gorm:"size:36;index"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Message) TableName() string { return "messages" }

type MessageType string

const (
	TypeInbox        MessageType = "Inbox"
	TypeAnnouncement MessageType = "Announcement"
)

func (t MessageType) Valid() bool { return t == TypeInbox || t == TypeAnnouncement }

// Thread is a top-level message with its replies, oldest reply first.
type Thread struct {
	Message
	Replies []Message `json:"replies"`
}
