package services_test

import (
	"context"
	"testing"
	"time"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/events"
	"foodlink-backend/internal/models"
	"foodlink-backend/internal/repository"
	"foodlink-backend/internal/repository/memory"
	"foodlink-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seedDonation struct {
	area       string
	createdAt  time.Time
	pickupTime *time.Time
}

func seedListing(t *testing.T, store *memory.Store, donorID string, seeds []seedDonation) []string {
	t.Helper()
	ctx := context.Background()

	ids := make([]string, 0, len(seeds))
	for i, s := range seeds {
		d := &models.Donation{
			ID:                  "donation-" + string(rune('a'+i)),
			DonorID:             donorID,
			Status:              models.DonationAvailable,
			FoodType:            "bread",
			ApproxQuantity:      3,
			QuantityUnit:        "portions",
			Area:                s.area,
			PickupAddress:       "somewhere",
			PreferredPickupTime: s.pickupTime,
			ContactNumber:       "+10000000001",
			CreatedAt:           s.createdAt,
		}
		require.NoError(t, store.Donations().Create(ctx, d))
		ids = append(ids, d.ID)
	}
	return ids
}

func TestList_AreaFilterIsCaseInsensitiveSubstring(t *testing.T) {
	store := memory.NewStore()
	listing := services.NewListingService(store.Donations())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	seedListing(t, store, "donor-a", []seedDonation{
		{area: "Central District", createdAt: base},
		{area: "CENTRAL north", createdAt: base.Add(time.Minute)},
		{area: "Harbor", createdAt: base.Add(2 * time.Minute)},
	})

	donations, err := listing.List(ctx, repository.ListQuery{Area: "central"})
	require.NoError(t, err)
	require.Len(t, donations, 2)
	for _, d := range donations {
		assert.Contains(t, []string{"Central District", "CENTRAL north"}, d.Area)
	}
}

func TestList_DefaultSortIsNewestFirst(t *testing.T) {
	store := memory.NewStore()
	listing := services.NewListingService(store.Donations())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	ids := seedListing(t, store, "donor-a", []seedDonation{
		{area: "A", createdAt: base},
		{area: "B", createdAt: base.Add(time.Hour)},
		{area: "C", createdAt: base.Add(2 * time.Hour)},
	})

	donations, err := listing.List(ctx, repository.ListQuery{})
	require.NoError(t, err)
	require.Len(t, donations, 3)
	assert.Equal(t, ids[2], donations[0].ID)
	assert.Equal(t, ids[1], donations[1].ID)
	assert.Equal(t, ids[0], donations[2].ID)
}

func TestList_SortVariants(t *testing.T) {
	store := memory.NewStore()
	listing := services.NewListingService(store.Donations())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	early := base.Add(30 * time.Minute)
	late := base.Add(5 * time.Hour)
	seedListing(t, store, "donor-a", []seedDonation{
		{area: "Zeta", createdAt: base, pickupTime: &late},
		{area: "Alpha", createdAt: base.Add(time.Minute), pickupTime: &early},
		{area: "Mid", createdAt: base.Add(2 * time.Minute)},
	})

	t.Run("pickup_time ascending", func(t *testing.T) {
		donations, err := listing.List(ctx, repository.ListQuery{Sort: "pickup_time"})
		require.NoError(t, err)
		require.Len(t, donations, 3)
		assert.Equal(t, "Alpha", donations[0].Area)
		assert.Equal(t, "Zeta", donations[1].Area)
		// No preferred time sorts last.
		assert.Equal(t, "Mid", donations[2].Area)
	})

	t.Run("area ascending", func(t *testing.T) {
		donations, err := listing.List(ctx, repository.ListQuery{Sort: "area"})
		require.NoError(t, err)
		require.Len(t, donations, 3)
		assert.Equal(t, "Alpha", donations[0].Area)
		assert.Equal(t, "Mid", donations[1].Area)
		assert.Equal(t, "Zeta", donations[2].Area)
	})

	t.Run("unknown sort rejected", func(t *testing.T) {
		_, err := listing.List(ctx, repository.ListQuery{Sort: "price"})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})
}

func TestList_Pagination(t *testing.T) {
	store := memory.NewStore()
	listing := services.NewListingService(store.Donations())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	seeds := make([]seedDonation, 5)
	for i := range seeds {
		seeds[i] = seedDonation{area: "Central", createdAt: base.Add(time.Duration(i) * time.Minute)}
	}
	ids := seedListing(t, store, "donor-a", seeds)

	page1, err := listing.List(ctx, repository.ListQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, ids[4], page1[0].ID)
	assert.Equal(t, ids[3], page1[1].ID)

	page2, err := listing.List(ctx, repository.ListQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, ids[2], page2[0].ID)
	assert.Equal(t, ids[1], page2[1].ID)

	page3, err := listing.List(ctx, repository.ListQuery{Page: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, ids[0], page3[0].ID)

	empty, err := listing.List(ctx, repository.ListQuery{Page: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestList_StatusFilterAndDonorEmbed(t *testing.T) {
	store := memory.NewStore()
	listing := services.NewListingService(store.Donations())
	acceptanceService := services.NewAcceptanceService(
		store, store.Donations(), store.Acceptances(), events.NopPublisher{},
	)
	ctx := context.Background()

	store.PutUser(models.User{ID: "donor-a", Name: "Ada", Phone: "+155500001", Role: models.RoleDonor})

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	ids := seedListing(t, store, "donor-a", []seedDonation{
		{area: "Central", createdAt: base},
		{area: "Central", createdAt: base.Add(time.Minute)},
	})

	_, err := acceptanceService.Accept(ctx, ids[0], "volunteer-b")
	require.NoError(t, err)

	t.Run("default shows only available", func(t *testing.T) {
		donations, err := listing.List(ctx, repository.ListQuery{})
		require.NoError(t, err)
		require.Len(t, donations, 1)
		assert.Equal(t, ids[1], donations[0].ID)
	})

	t.Run("explicit accepted filter", func(t *testing.T) {
		donations, err := listing.List(ctx, repository.ListQuery{Status: models.DonationAccepted})
		require.NoError(t, err)
		require.Len(t, donations, 1)
		assert.Equal(t, ids[0], donations[0].ID)
	})

	t.Run("donor display fields are embedded", func(t *testing.T) {
		donations, err := listing.List(ctx, repository.ListQuery{})
		require.NoError(t, err)
		require.Len(t, donations, 1)
		require.NotNil(t, donations[0].Donor)
		assert.Equal(t, "Ada", donations[0].Donor.Name)
		assert.Equal(t, "+155500001", donations[0].Donor.Phone)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := listing.List(ctx, repository.ListQuery{Status: "expired"})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})
}
