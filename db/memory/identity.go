package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"eventhub/models"
)

// AddIdentity registers a user for display lookups.
func (s *Store) AddIdentity(ident models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[ident.ID] = ident
}

func (s *Store) ResolveIdentity(ctx context.Context, id uuid.UUID) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ident, ok := s.identities[id]
	if !ok {
		return models.Identity{}, errors.Wrapf(models.ErrNotFound, "user %s", id)
	}
	return ident, nil
}

// Record keeps audit records in memory; see AuditRecords.
func (s *Store) Record(ctx context.Context, rec models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, rec)
	return nil
}

func (s *Store) AuditRecords() []models.AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditRecord(nil), s.audit...)
}
