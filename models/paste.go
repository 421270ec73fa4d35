package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Defaults applied when a paste is created without them.
const (
	DefaultTitle    = "Untitled"
	DefaultLanguage = "text"
)

// UniqueIDLength is the length of the public paste identifier.
const UniqueIDLength = 8

// Paste is a stored text snippet. UniqueID is the only identifier that ever
// leaves the system; the integer id stays internal. UserID is nullable so the
// store permits anonymous pastes even though current entry points require a
// logged-in owner.
type Paste struct {
	bun.BaseModel `bun:"table:pastes,alias:p"`

	ID        int       `bun:"id,pk,autoincrement" json:"-"`
	UniqueID  string    `bun:"unique_id,notnull,unique" json:"unique_id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Content   string    `bun:"content,notnull" json:"content"`
	Language  string    `bun:"language,notnull,default:'text'" json:"language"`
	IsPublic  bool      `bun:"is_public,notnull,default:true" json:"is_public"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
	Views     int       `bun:"views,notnull,default:0" json:"views"`
	UserID    *int      `bun:"user_id" json:"-"`

	Author *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}

// NewPaste builds an unsaved paste with the documented defaults applied:
// empty title becomes "Untitled" and empty language becomes "text". Content
// validation is the caller's job. userID may be nil for anonymous pastes.
func NewPaste(title, content, language string, isPublic bool, userID *int) *Paste {
	if title == "" {
		title = DefaultTitle
	}
	if language == "" {
		language = DefaultLanguage
	}
	return &Paste{
		Title:    title,
		Content:  content,
		Language: language,
		IsPublic: isPublic,
		UserID:   userID,
	}
}

// AuthorName returns the owning username, or "Anonymous" for ownerless pastes.
func (p Paste) AuthorName() string {
	if p.Author == nil {
		return "Anonymous"
	}
	return p.Author.Username
}
