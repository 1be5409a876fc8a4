package lifecycle_test

import (
	"testing"
	"time"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/lifecycle"
	"foodlink-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	legal := []struct {
		from  models.DonationStatus
		event lifecycle.Event
		to    models.DonationStatus
	}{
		{models.DonationAvailable, lifecycle.EventAccept, models.DonationAccepted},
		{models.DonationAvailable, lifecycle.EventCancel, models.DonationCancelled},
		{models.DonationAccepted, lifecycle.EventComplete, models.DonationCompleted},
	}

	for _, tc := range legal {
		t.Run(string(tc.from)+"_"+string(tc.event), func(t *testing.T) {
			to, err := lifecycle.Next(tc.from, tc.event)
			require.NoError(t, err)
			assert.Equal(t, tc.to, to)
		})
	}

	illegal := []struct {
		from  models.DonationStatus
		event lifecycle.Event
	}{
		{models.DonationAvailable, lifecycle.EventComplete},
		{models.DonationAccepted, lifecycle.EventAccept},
		{models.DonationAccepted, lifecycle.EventCancel},
		{models.DonationCompleted, lifecycle.EventAccept},
		{models.DonationCompleted, lifecycle.EventComplete},
		{models.DonationCompleted, lifecycle.EventCancel},
		{models.DonationCancelled, lifecycle.EventAccept},
		{models.DonationCancelled, lifecycle.EventComplete},
		{models.DonationCancelled, lifecycle.EventCancel},
	}

	for _, tc := range illegal {
		t.Run("illegal_"+string(tc.from)+"_"+string(tc.event), func(t *testing.T) {
			_, err := lifecycle.Next(tc.from, tc.event)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, lifecycle.Terminal(models.DonationAvailable))
	assert.False(t, lifecycle.Terminal(models.DonationAccepted))
	assert.True(t, lifecycle.Terminal(models.DonationCompleted))
	assert.True(t, lifecycle.Terminal(models.DonationCancelled))
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	t.Run("accept stamps accepted_at", func(t *testing.T) {
		d := &models.Donation{Status: models.DonationAvailable}

		err := lifecycle.Apply(d, lifecycle.EventAccept, now)
		require.NoError(t, err)
		assert.Equal(t, models.DonationAccepted, d.Status)
		require.NotNil(t, d.AcceptedAt)
		assert.Equal(t, now, *d.AcceptedAt)
		assert.Nil(t, d.CompletedAt)
	})

	t.Run("complete stamps completed_at and keeps accepted_at", func(t *testing.T) {
		d := &models.Donation{Status: models.DonationAvailable}

		require.NoError(t, lifecycle.Apply(d, lifecycle.EventAccept, now))
		require.NoError(t, lifecycle.Apply(d, lifecycle.EventComplete, later))

		assert.Equal(t, models.DonationCompleted, d.Status)
		require.NotNil(t, d.AcceptedAt)
		assert.Equal(t, now, *d.AcceptedAt)
		require.NotNil(t, d.CompletedAt)
		assert.Equal(t, later, *d.CompletedAt)
	})

	t.Run("cancel leaves no timestamps", func(t *testing.T) {
		d := &models.Donation{Status: models.DonationAvailable}

		err := lifecycle.Apply(d, lifecycle.EventCancel, now)
		require.NoError(t, err)
		assert.Equal(t, models.DonationCancelled, d.Status)
		assert.Nil(t, d.AcceptedAt)
		assert.Nil(t, d.CompletedAt)
	})

	t.Run("illegal event leaves donation untouched", func(t *testing.T) {
		d := &models.Donation{Status: models.DonationCancelled}

		err := lifecycle.Apply(d, lifecycle.EventAccept, now)
		require.Error(t, err)
		assert.Equal(t, models.DonationCancelled, d.Status)
		assert.Nil(t, d.AcceptedAt)
	})
}
