package services

import (
	"context"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
)

// SpinService defines the participant-facing allocation operations
type SpinService interface {
	// Spin returns the participant's prize, drawing one on first contact
	Spin(ctx context.Context, identity string) (*models.SpinResult, error)

	// GetParticipant returns the participant's recorded state without side effects
	GetParticipant(ctx context.Context, identity string) (*models.ParticipantResult, error)
}

// AdminService defines the operator-facing catalog operations
type AdminService interface {
	// ResetInventory restores every capped prize to its cap
	ResetInventory(ctx context.Context, adminKey string) (*models.ResetResult, error)

	// GetStats returns the current counters of every prize
	GetStats(ctx context.Context, adminKey string) ([]models.PrizeStat, error)

	// IssueToken exchanges the admin key for a short-lived session token
	IssueToken(ctx context.Context, adminKey string) (*models.AdminTokenResponse, error)
}
