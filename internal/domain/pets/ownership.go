package pets

import "context"

// OwnerOf expone el ownerID de una mascota.
// Se usa para evitar ciclos de imports entre módulos (pets <-> bookings).
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerID, nil
}

// ListByOwners junta las mascotas de varios dueños, en el orden de ownerIDs.
func (s *Service) ListByOwners(ctx context.Context, ownerIDs []string) ([]Pet, error) {
	out := make([]Pet, 0)
	seen := map[string]struct{}{}
	for _, id := range ownerIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		items, err := s.repo.ListByOwner(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}
