package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scenevault/scenevault/internal/model"
)

// ErrSceneNotFound is returned when a user has not saved a scene yet.
var ErrSceneNotFound = errors.New("scene not found")

// UpsertScene stores doc.Content as the only scene of doc.UserID.
// The row is created with doc.ID on first save and overwritten afterwards;
// the unique user_id constraint makes concurrent saves for one user safe.
// On return doc carries the stored ID and timestamps, and created reports
// whether a new row was inserted.
func (r *Repository) UpsertScene(ctx context.Context, doc *model.SceneDocument) (created bool, err error) {
	content, err := doc.Content.MarshalContent()
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO user_data (id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET content = EXCLUDED.content,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`

	now := time.Now().UTC()
	err = r.pool.QueryRow(ctx, query, doc.ID, doc.UserID, content, now).Scan(
		&doc.ID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&created,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert scene: %w", classify(err))
	}

	return created, nil
}

// GetSceneByUserID retrieves the scene document owned by userID.
func (r *Repository) GetSceneByUserID(ctx context.Context, userID string) (*model.SceneDocument, error) {
	query := `
		SELECT id, user_id, content, created_at, updated_at
		FROM user_data
		WHERE user_id = $1
	`

	var (
		doc     model.SceneDocument
		content []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&doc.ID,
		&doc.UserID,
		&content,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("failed to get scene: %w", classify(err))
	}

	if content == nil {
		content = []byte(`{}`)
	}
	doc.Content, err = model.UnmarshalScene(content)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}
