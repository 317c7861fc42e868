package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NoteRepository interface {
	// Upsert inserts n or, when (session_id, author_id) already exists,
	// overwrites content and updated_at in the same statement. It returns
	// the stored row.
	Upsert(ctx context.Context, n *models.Note) (*models.Note, error)
	GetBySessionAndAuthor(ctx context.Context, sessionID, authorID string) (*models.Note, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Note, error)
}

type noteRepo struct {
	db *gorm.DB
}

func NewNoteRepo(db *gorm.DB) NoteRepository {
	return &noteRepo{db: db}
}

func (r *noteRepo) Upsert(ctx context.Context, n *models.Note) (*models.Note, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "author_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
		}).
		Create(n).Error
	if err != nil {
		return nil, err
	}
	// On conflict the row keeps its original id and created_at.
	return r.GetBySessionAndAuthor(ctx, n.SessionID, n.AuthorID)
}

func (r *noteRepo) GetBySessionAndAuthor(ctx context.Context, sessionID, authorID string) (*models.Note, error) {
	var n models.Note
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND author_id = ?", sessionID, authorID).
		Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *noteRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Note, error) {
	rows := []models.Note{}
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
