package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/redeem"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) toResponse(sess redeem.Session) *model.RedemptionResponse {
	return &model.RedemptionResponse{
		ID:               sess.ID.String(),
		VenueID:          sess.VenueID,
		Code:             sess.Code,
		IssuedAt:         sess.IssuedAt,
		ExpiresAt:        sess.ExpiresAt,
		SecondsRemaining: sess.SecondsRemaining(s.redemptions.Now()),
	}
}

// IssueRedemption opens a code session for a venue. It returns nil when the
// venue does not exist.
func (s *Service) IssueRedemption(ctx context.Context, venueID int) (*model.RedemptionResponse, error) {
	venue, err := s.GetVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, nil
	}

	sess := s.redemptions.Issue(venue.ID)
	s.logger.Info("Redemption issued", zap.String("session", sess.ID.String()), zap.Int("venue_id", venue.ID))
	return s.toResponse(sess), nil
}

// CurrentRedemption returns the code currently valid for a session
func (s *Service) CurrentRedemption(_ context.Context, id uuid.UUID) (*model.RedemptionResponse, error) {
	sess, err := s.redemptions.Current(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get redemption %s: %w", id, err)
	}
	return s.toResponse(sess), nil
}

// RedemptionQR renders the current code as a PNG
func (s *Service) RedemptionQR(_ context.Context, id uuid.UUID, size int) ([]byte, error) {
	sess, err := s.redemptions.Current(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get redemption %s: %w", id, err)
	}
	return redeem.QRPNG(sess.Code, size)
}

// CloseRedemption ends a session; any open streams for it stop
func (s *Service) CloseRedemption(_ context.Context, id uuid.UUID) error {
	if err := s.redemptions.Close(id); err != nil {
		return fmt.Errorf("failed to close redemption %s: %w", id, err)
	}
	s.logger.Info("Redemption closed", zap.String("session", id.String()))
	return nil
}

// WatchRedemption streams countdown ticks until ctx ends or the session is swept
func (s *Service) WatchRedemption(ctx context.Context, id uuid.UUID) (<-chan redeem.Tick, error) {
	ticks, err := s.redemptions.Watch(ctx, id, s.tick)
	if err != nil {
		return nil, fmt.Errorf("failed to watch redemption %s: %w", id, err)
	}
	return ticks, nil
}
