package domain

import (
	"time"

	"github.com/google/uuid"
)

// Plugin is a catalog row describing one uploaded artifact. ID doubles as the
// blob key of the artifact bytes.
type Plugin struct {
	ID         uuid.UUID `json:"id"`
	ArtifactID string    `json:"artifact_id"`
	GroupID    string    `json:"group_id"`
	Version    string    `json:"version"`
	UploadedBy string    `json:"uploaded_by"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}
