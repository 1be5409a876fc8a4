package services_test

import (
	"context"
	"sync"
	"testing"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/events"
	"foodlink-backend/internal/models"
	"foodlink-backend/internal/repository/memory"
	"foodlink-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*memory.Store, *services.DonationService, *services.AcceptanceService) {
	t.Helper()
	store := memory.NewStore()
	donationService := services.NewDonationService(store.Donations(), events.NopPublisher{})
	acceptanceService := services.NewAcceptanceService(
		store, store.Donations(), store.Acceptances(), events.NopPublisher{},
	)
	return store, donationService, acceptanceService
}

func createDonation(t *testing.T, svc *services.DonationService, donorID string) *models.Donation {
	t.Helper()
	donation, err := svc.Create(context.Background(), donorID, services.CreateDonationInput{
		FoodType:       "cooked rice",
		ApproxQuantity: 12,
		Area:           "Central District",
		PickupAddress:  "12 Market Street",
		ContactNumber:  "+10000000001",
	})
	require.NoError(t, err)
	return donation
}

func TestAccept_SingleWinnerUnderContention(t *testing.T) {
	store, donationService, acceptanceService := newFixture(t)
	ctx := context.Background()

	donation := createDonation(t, donationService, "donor-a")

	const volunteers = 32
	var wg sync.WaitGroup
	errs := make([]error, volunteers)
	accepted := make([]*models.Acceptance, volunteers)

	for i := 0; i < volunteers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			accepted[i], errs[i] = acceptanceService.Accept(ctx, donation.ID, acceptVolunteerID(i))
		}(i)
	}
	wg.Wait()

	var winners, conflicts int
	var winner *models.Acceptance
	for i := 0; i < volunteers; i++ {
		if errs[i] == nil {
			winners++
			winner = accepted[i]
		} else {
			assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(errs[i]))
			conflicts++
		}
	}

	assert.Equal(t, 1, winners, "exactly one volunteer must win the race")
	assert.Equal(t, volunteers-1, conflicts)

	got, err := store.Donations().GetByID(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationAccepted, got.Status)
	require.NotNil(t, got.AcceptedAt)

	require.NotNil(t, winner)
	held, err := store.Acceptances().GetByDonationAndVolunteer(ctx, donation.ID, winner.VolunteerID)
	require.NoError(t, err)
	assert.Equal(t, models.AcceptanceAccepted, held.Status)
}

func acceptVolunteerID(i int) string {
	return "volunteer-" + string(rune('a'+i/10)) + string(rune('0'+i%10))
}

func TestAccept_NonAvailableDonation(t *testing.T) {
	_, donationService, acceptanceService := newFixture(t)
	ctx := context.Background()

	t.Run("already accepted", func(t *testing.T) {
		donation := createDonation(t, donationService, "donor-a")
		_, err := acceptanceService.Accept(ctx, donation.ID, "volunteer-b")
		require.NoError(t, err)

		_, err = acceptanceService.Accept(ctx, donation.ID, "volunteer-c")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		donation := createDonation(t, donationService, "donor-a")
		require.NoError(t, acceptanceService.Cancel(ctx, donation.ID, "donor-a"))

		_, err := acceptanceService.Accept(ctx, donation.ID, "volunteer-b")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})

	t.Run("completed", func(t *testing.T) {
		donation := createDonation(t, donationService, "donor-a")
		_, err := acceptanceService.Accept(ctx, donation.ID, "volunteer-b")
		require.NoError(t, err)
		require.NoError(t, acceptanceService.Complete(ctx, donation.ID, "volunteer-b"))

		_, err = acceptanceService.Accept(ctx, donation.ID, "volunteer-c")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})

	t.Run("missing donation", func(t *testing.T) {
		_, err := acceptanceService.Accept(ctx, "no-such-donation", "volunteer-b")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})
}

func TestComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip stamps both rows", func(t *testing.T) {
		store, donationService, acceptanceService := newFixture(t)
		donation := createDonation(t, donationService, "donor-a")

		acceptance, err := acceptanceService.Accept(ctx, donation.ID, "volunteer-b")
		require.NoError(t, err)
		require.NoError(t, acceptanceService.Complete(ctx, donation.ID, "volunteer-b"))

		got, err := store.Donations().GetByID(ctx, donation.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DonationCompleted, got.Status)
		assert.NotNil(t, got.AcceptedAt)
		assert.NotNil(t, got.CompletedAt)

		held, err := store.Acceptances().GetByDonationAndVolunteer(ctx, donation.ID, acceptance.VolunteerID)
		require.NoError(t, err)
		assert.Equal(t, models.AcceptanceCompleted, held.Status)
		assert.NotNil(t, held.CompletedAt)
	})

	t.Run("non-owning volunteer is rejected", func(t *testing.T) {
		store, donationService, acceptanceService := newFixture(t)
		donation := createDonation(t, donationService, "donor-a")

		_, err := acceptanceService.Accept(ctx, donation.ID, "volunteer-b")
		require.NoError(t, err)

		err = acceptanceService.Complete(ctx, donation.ID, "volunteer-c")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindNotAuthorized, apperrors.KindOf(err))

		got, err := store.Donations().GetByID(ctx, donation.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DonationAccepted, got.Status)
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("completing twice conflicts", func(t *testing.T) {
		_, donationService, acceptanceService := newFixture(t)
		donation := createDonation(t, donationService, "donor-a")

		_, err := acceptanceService.Accept(ctx, donation.ID, "volunteer-b")
		require.NoError(t, err)
		require.NoError(t, acceptanceService.Complete(ctx, donation.ID, "volunteer-b"))

		err = acceptanceService.Complete(ctx, donation.ID, "volunteer-b")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})

	t.Run("never accepted", func(t *testing.T) {
		_, donationService, acceptanceService := newFixture(t)
		donation := createDonation(t, donationService, "donor-a")

		err := acceptanceService.Complete(ctx, donation.ID, "volunteer-b")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindNotAuthorized, apperrors.KindOf(err))
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels available donation", func(t *testing.T) {
		store, donationService, acceptanceService := newFixture(t)
		donation := createDonation(t, donationService, "donor-a")

		require.NoError(t, acceptanceService.Cancel(ctx, donation.ID, "donor-a"))

		got, err := store.Donations().GetByID(ctx, donation.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DonationCancelled, got.Status)
		assert.Nil(t, got.AcceptedAt)
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		store, donationService, acceptanceService := newFixture(t)
		donation := createDonation(t, donationService, "donor-a")

		err := acceptanceService.Cancel(ctx, donation.ID, "donor-b")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

		got, err := store.Donations().GetByID(ctx, donation.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DonationAvailable, got.Status)
	})

	t.Run("already accepted donation cannot be cancelled", func(t *testing.T) {
		store, donationService, acceptanceService := newFixture(t)
		donation := createDonation(t, donationService, "donor-a")

		_, err := acceptanceService.Accept(ctx, donation.ID, "volunteer-b")
		require.NoError(t, err)

		err = acceptanceService.Cancel(ctx, donation.ID, "donor-a")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

		got, err := store.Donations().GetByID(ctx, donation.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DonationAccepted, got.Status)
	})

	t.Run("missing donation", func(t *testing.T) {
		_, _, acceptanceService := newFixture(t)

		err := acceptanceService.Cancel(ctx, "no-such-donation", "donor-a")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}
