package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatRole identifies the author of a chat turn.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the session's chat history.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionData is the heavy per-session blob: everything the dashboard needs to
// restore a working state. The file tree inside is always payload-stripped;
// binary payloads live in object storage and are reachable via ContentRef.
type SessionData struct {
	FileTree              *FileNodeDTO                 `json:"fileTree,omitempty"`
	ExtractedTexts        map[string]*string           `json:"extractedTexts,omitempty"`
	Summaries             map[string]string            `json:"summaries,omitempty"`
	ExtractedCompanies    map[string][]CompanyRecord   `json:"extractedCompanies,omitempty"`
	ConsolidatedCompanies []ConsolidatedCompany        `json:"consolidatedCompanies,omitempty"`
	ChatHistory           []ChatMessage                `json:"chatHistory,omitempty"`
}

// AnalysisSession is the light session row. Meta holds small client state
// (name of the active model, UI flags); the heavy SessionData blob is stored
// out of band keyed by the session id.
type AnalysisSession struct {
	gorm.Model

	UserID uint   `gorm:"index;not null"`
	Name   string `gorm:"size:255;not null"`
	Meta   datatypes.JSON
}

func (AnalysisSession) TableName() string {
	return "analysis_sessions"
}
