package repository

import (
	"context"

	"github.com/ArtEnginer/POS/internal/domain/entity"
)

// AuditRepository puerto append-only para audit_logs.
type AuditRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*entity.AuditLog, error)
}
