package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/infrastructure/db/memory"
)

func TestListingService_Apartments(t *testing.T) {
	apartments := memory.NewApartmentRepository(
		domain.Apartment{ApartmentNo: "A1", BlockName: "A", FloorNo: 1, Rent: 1000},
		domain.Apartment{ApartmentNo: "B2", BlockName: "B", FloorNo: 2, Rent: 1500},
	)
	svc := NewListingService(apartments, memory.NewAnnouncementRepository(), discardLogger)
	ctx := context.Background()

	list, err := svc.ListApartments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	got, err := svc.GetApartment(ctx, list[1].ID)
	require.NoError(t, err)
	require.Equal(t, "B2", got.ApartmentNo)

	_, err = svc.GetApartment(ctx, "65f000000000000000000000")
	require.ErrorIs(t, err, domain.ErrApartmentNotFound)

	_, err = svc.GetApartment(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListingService_PublishAnnouncement(t *testing.T) {
	svc := NewListingService(memory.NewApartmentRepository(), memory.NewAnnouncementRepository(), discardLogger)
	ctx := context.Background()

	res, err := svc.PublishAnnouncement(ctx, domain.Announcement{ID: "client-id", Title: "Water outage", Description: "Tuesday 9-12"})
	require.NoError(t, err)
	require.NotEqual(t, "client-id", res.InsertedID)

	list, err := svc.ListAnnouncements(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Water outage", list[0].Title)
	require.False(t, list[0].CreatedAt.IsZero())
}
