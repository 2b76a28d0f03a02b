package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
)

// ListingService serves apartments and announcements.
type ListingService struct {
	apartments    ports.ApartmentRepository
	announcements ports.AnnouncementRepository
	logger        zerolog.Logger
}

func NewListingService(apartments ports.ApartmentRepository, announcements ports.AnnouncementRepository, logger zerolog.Logger) *ListingService {
	return &ListingService{apartments: apartments, announcements: announcements, logger: logger}
}

func (s *ListingService) ListApartments(ctx context.Context) ([]domain.Apartment, error) {
	out, err := s.apartments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list apartments: %w", err)
	}
	return out, nil
}

func (s *ListingService) GetApartment(ctx context.Context, id string) (*domain.Apartment, error) {
	a, err := s.apartments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get apartment: %w", err)
	}
	return a, nil
}

func (s *ListingService) ListAnnouncements(ctx context.Context) ([]domain.Announcement, error) {
	out, err := s.announcements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return out, nil
}

func (s *ListingService) PublishAnnouncement(ctx context.Context, announcement domain.Announcement) (*domain.InsertResult, error) {
	announcement.ID = ""
	announcement.CreatedAt = time.Now().UTC()

	res, err := s.announcements.Create(ctx, &announcement)
	if err != nil {
		return nil, fmt.Errorf("publish announcement: %w", err)
	}
	s.logger.Info().Str("id", res.InsertedID).Str("title", announcement.Title).Msg("announcement published")
	return res, nil
}
