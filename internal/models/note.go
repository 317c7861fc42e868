package models

import "time"

// Note is one participant's scratchpad for one session; at most one row per
// (session_id, author_id).
type Note struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string    `gorm:"column:session_id;type:text;not null;uniqueIndex:uniq_note_session_author,priority:1;index:idx_notes_session" json:"session_id"`
	AuthorID  string    `gorm:"column:author_id;type:text;not null;uniqueIndex:uniq_note_session_author,priority:2" json:"author_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Note) TableName() string { return "session_notes" }

type NoteView struct {
	Note
	Author *ParticipantProfile `json:"author,omitempty"`
}
