package service

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scenevault/scenevault/internal/metrics"
	"github.com/scenevault/scenevault/internal/model"
	"github.com/scenevault/scenevault/internal/repository"
)

// SceneStore is the persistence SceneService needs.
type SceneStore interface {
	UpsertScene(ctx context.Context, doc *model.SceneDocument) (bool, error)
	GetSceneByUserID(ctx context.Context, userID string) (*model.SceneDocument, error)
}

// SceneService saves and loads the single scene of each user.
type SceneService struct {
	scenes  SceneStore
	metrics metrics.Recorder
}

// NewSceneService creates a new SceneService.
func NewSceneService(scenes SceneStore, recorder metrics.Recorder) *SceneService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SceneService{
		scenes:  scenes,
		metrics: recorder,
	}
}

// Save validates scene and replaces the stored scene of userID with it.
func (s *SceneService) Save(ctx context.Context, userID string, scene model.Scene) (*model.SceneDocument, error) {
	if err := scene.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	start := time.Now()
	doc := &model.SceneDocument{
		ID:      ulid.Make().String(),
		UserID:  userID,
		Content: scene,
	}

	created, err := s.scenes.UpsertScene(ctx, doc)
	if err != nil {
		return nil, storageError("save scene", err)
	}

	s.metrics.IncSceneSaved(created)
	s.metrics.ObserveSceneSaveDuration(time.Since(start))

	return doc, nil
}

// Load returns the stored scene of userID.
func (s *SceneService) Load(ctx context.Context, userID string) (*model.SceneDocument, error) {
	doc, err := s.scenes.GetSceneByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSceneNotFound) {
			s.metrics.IncSceneLoaded(false)
			return nil, ErrSceneNotFound
		}
		return nil, storageError("load scene", err)
	}

	s.metrics.IncSceneLoaded(true)

	return doc, nil
}
