package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

// PostgresRepository persists newsletter drafts into Postgres. It plays the
// persistence collaborator role: one attempt, identity assigned on insert.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DraftRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(db),
	}
}

// sectionRow mirrors the shape the downstream renderer reads back.
type sectionRow struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

// SaveDraft inserts the draft with a fresh identity and draft status.
func (r *PostgresRepository) SaveDraft(ctx context.Context, draft domain.Draft) (domain.SavedDraft, error) {
	if r.db == nil {
		return domain.SavedDraft{}, fmt.Errorf("draft repository has no database")
	}

	content, err := json.Marshal(toRows(draft.Sections))
	if err != nil {
		return domain.SavedDraft{}, fmt.Errorf("marshal sections: %w", err)
	}

	var saved domain.SavedDraft
	err = r.builder.
		Insert("newsletters").
		Columns("id", "title", "content", "status").
		Values(uuid.NewString(), draft.Title, content, "draft").
		Suffix("RETURNING id, status, created_at").
		QueryRowContext(ctx).
		Scan(&saved.ID, &saved.Status, &saved.CreatedAt)
	if err != nil {
		return domain.SavedDraft{}, fmt.Errorf("insert draft: %w", err)
	}

	return saved, nil
}

func toRows(sections []domain.Section) []sectionRow {
	rows := make([]sectionRow, 0, len(sections))
	for _, s := range sections {
		rows = append(rows, sectionRow{
			Type:        string(s.Type),
			Title:       s.Title,
			Description: s.RenderDescription(),
			URL:         s.Link,
		})
	}
	return rows
}
