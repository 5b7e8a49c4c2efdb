package db

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"eventhub/models"
)

// UpsertIdentity создает пользователя или обновляет его имя.
func (s *Storage) UpsertIdentity(ctx context.Context, ident models.Identity) error {
	query := `
        INSERT INTO users (id, name, email, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role`
	_, err := s.db.ExecContext(ctx, query, ident.ID, ident.Name, ident.Email, ident.Role)
	return errors.Wrap(err, "upsert user")
}

func (s *Storage) ResolveIdentity(ctx context.Context, id uuid.UUID) (models.Identity, error) {
	ident := models.Identity{}
	err := s.db.GetContext(ctx, &ident, `SELECT id, name, email, role FROM users WHERE id = $1`, id)
	if err != nil {
		return models.Identity{}, notFound(err, "user "+id.String())
	}
	return ident, nil
}

// Record добавляет rec в audit_logs.
func (s *Storage) Record(ctx context.Context, rec models.AuditRecord) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return errors.Wrap(err, "marshal audit details")
	}
	query := `
        INSERT INTO audit_logs (action, performed_by, target_entity, target_id, details, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = s.db.ExecContext(ctx, query,
		rec.Action, rec.PerformedBy, rec.TargetEntity, rec.TargetID, details, rec.CreatedAt)
	return errors.Wrap(err, "insert audit log")
}
