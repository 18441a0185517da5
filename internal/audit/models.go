package audit

import (
	"time"

	"gorm.io/datatypes"
)

// Entry is an immutable, append-only audit log record.
//
// Invariants:
// - Entries are never updated or deleted; the repository has no such methods.
// - Action, Entity and User are required.
// - Entries written by a mutating service share that service's transaction.
type Entry struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	Action   Action `json:"action" gorm:"size:32;not null;index"`
	Entity   string `json:"entity" gorm:"size:64;not null;index"`
	EntityID string `json:"entityId" gorm:"size:64"`
	Details  string `json:"details" gorm:"type:text"`

	// User is the actor: the signed-in user's email, or the configured
	// system actor for public intake.
	User string `json:"user" gorm:"column:actor;size:255;not null;index"`

	// Changes holds an arbitrary before/after snapshot.
	Changes datatypes.JSON `json:"changes"`

	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
}

func (Entry) TableName() string { return "audit_trail" }

type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionArchive Action = "ARCHIVE"
	ActionRestore Action = "RESTORE"
	ActionLogin   Action = "LOGIN"
)

// KnownActions lists the actions the reporting stats break out individually.
var KnownActions = []Action{ActionCreate, ActionUpdate, ActionDelete, ActionArchive, ActionRestore, ActionLogin}

// Entity names used across the application.
const (
	EntityEvent           = "Event"
	EntityArchivedEvent   = "ArchivedEvent"
	EntityMessage         = "Message"
	EntityFinancialRecord = "FinancialRecord"
	EntityUser            = "User"
	EntityAdminProfile    = "AdminProfile"
	EntityAppSettings     = "AppSettings"
	EntityAdmin           = "Admin"
)
