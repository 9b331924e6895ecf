package postgres

import (
	"context"
	"fmt"

	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo escritura append-only en audit_logs.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador de auditoría. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta el registro; dentro de una tx se confirma junto con el cambio auditado.
func (r *AuditRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, branch_id, action, entity_type, entity_id, old_data, new_data,
			ip_address, user_agent, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.UserID, l.BranchID, l.Action, l.EntityType, l.EntityID,
		nullableJSON(l.OldData), nullableJSON(l.NewData), l.IPAddress, l.UserAgent, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListByEntity historial más reciente primero.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*entity.AuditLog, error) {
	query := `
		SELECT id, COALESCE(user_id::text, ''), COALESCE(branch_id::text, ''), action, entity_type, entity_id,
			COALESCE(old_data, 'null'::jsonb), COALESCE(new_data, 'null'::jsonb), ip_address, user_agent, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, entityType, entityID, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLog
	for rows.Next() {
		var l entity.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.BranchID, &l.Action, &l.EntityType, &l.EntityID,
			&l.OldData, &l.NewData, &l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
