package service

import (
	"context"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
)

// RecordEvent stores a circulation event. Replays of the same event id are ignored.
func (s *Service) RecordEvent(ctx context.Context, ev model.Event) error {
	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		return s.storeErr("RecordEvent", "Database error occurred while recording the event.", err)
	}
	return nil
}

// Stats aggregates recorded events per patron; an empty patronID covers every patron.
func (s *Service) Stats(ctx context.Context, patronID string) ([]model.PatronStats, error) {
	if patronID != "" && !ValidPatronID(patronID) {
		return nil, errs.ErrInvalidPatron
	}
	stats, err := s.repo.PatronStats(ctx, patronID)
	if err != nil {
		return nil, s.storeErr("Stats", "Database error occurred while loading stats.", err)
	}
	if stats == nil {
		stats = []model.PatronStats{}
	}
	return stats, nil
}
