package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Position is a point in scene space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Cube is a labeled cube placed in the scene.
type Cube struct {
	Position Position `json:"position"`
	UUID     string   `json:"uuid"`
}

// Scene is the JSON content stored for a user.
// Hinge points are free-form objects owned by the client.
type Scene struct {
	Cubes         []Cube           `json:"cubes"`
	SelectedCubes []string         `json:"selectedCubes"`
	HingePoints   []map[string]any `json:"hingePoints"`
}

// Validate checks cube identifiers and fills absent lists with empty ones.
func (s *Scene) Validate() error {
	if s.Cubes == nil {
		return &ValidationError{Field: "cubes", Message: "cubes is required"}
	}
	for i, c := range s.Cubes {
		if c.UUID == "" {
			return &ValidationError{Field: "cubes", Message: fmt.Sprintf("cubes[%d].uuid is required", i)}
		}
		if hasNUL(c.UUID) {
			return &ValidationError{Field: "cubes", Message: fmt.Sprintf("cubes[%d].uuid contains invalid characters", i)}
		}
	}
	for i, id := range s.SelectedCubes {
		if hasNUL(id) {
			return &ValidationError{Field: "selectedCubes", Message: fmt.Sprintf("selectedCubes[%d] contains invalid characters", i)}
		}
	}
	for i, hp := range s.HingePoints {
		if valueHasNUL(hp) {
			return &ValidationError{Field: "hingePoints", Message: fmt.Sprintf("hingePoints[%d] contains invalid characters", i)}
		}
	}
	if s.SelectedCubes == nil {
		s.SelectedCubes = []string{}
	}
	if s.HingePoints == nil {
		s.HingePoints = []map[string]any{}
	}
	return nil
}

// valueHasNUL walks decoded JSON looking for NUL in keys or strings;
// jsonb rejects \u0000.
func valueHasNUL(v any) bool {
	switch t := v.(type) {
	case string:
		return hasNUL(t)
	case map[string]any:
		for k, e := range t {
			if hasNUL(k) || valueHasNUL(e) {
				return true
			}
		}
	case []any:
		for _, e := range t {
			if valueHasNUL(e) {
				return true
			}
		}
	}
	return false
}

// SceneDocument is the stored scene row of a user.
type SceneDocument struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   Scene     `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalContent encodes the scene for storage.
func (s *Scene) MarshalContent() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

// UnmarshalScene decodes stored scene content.
func UnmarshalScene(data []byte) (Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return Scene{}, fmt.Errorf("unmarshal scene: %w", err)
	}
	if s.Cubes == nil {
		s.Cubes = []Cube{}
	}
	if s.SelectedCubes == nil {
		s.SelectedCubes = []string{}
	}
	if s.HingePoints == nil {
		s.HingePoints = []map[string]any{}
	}
	return s, nil
}
