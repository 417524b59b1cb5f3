package cron

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"voxroom/server/internal/store"
)

// StartCronJobs schedules the daily housekeeping pass: rooms that ended
// long enough ago are purged together with their message history.
func StartCronJobs(st *store.Postgres, retentionDays int, log zerolog.Logger) *gocron.Scheduler {
	s := gocron.NewScheduler(time.Local)

	s.Every(1).Day().Do(func() {
		cleanupEndedRooms(st, retentionDays, log)
	})
	s.StartAsync()

	return s
}

func cleanupEndedRooms(st *store.Postgres, retentionDays int, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	purged, err := st.PurgeEndedRooms(ctx, retentionDays)
	if err != nil {
		log.Error().Err(err).Msg("failed to purge ended rooms")
		return
	}
	if purged > 0 {
		log.Info().Int64("rooms", purged).Msg("purged ended rooms")
	}
}
