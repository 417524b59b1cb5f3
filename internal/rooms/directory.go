package rooms

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"voxroom/server/internal/models"
	"voxroom/server/internal/roomerr"
)

// Directory splits the active rooms the way the landing page presents
// them: live rooms, and upcoming rooms whose scheduled start is still in
// the future. A room without a schedule is live from creation; a scheduled
// room moves to the live list on its own once the clock passes its start.
// Ended rooms never appear in the directory.
func (s *Service) Directory(ctx context.Context) (live, upcoming []models.Room, err error) {
	rooms, err := s.store.ActiveRooms(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("active rooms: %w", err)
	}

	now := time.Now()
	for _, room := range rooms {
		if room.ScheduledFor != nil && room.ScheduledFor.After(now) {
			upcoming = append(upcoming, room)
		} else {
			live = append(live, room)
		}
	}
	return live, upcoming, nil
}

// Trending derives the trending subset of the directory: the top rooms by
// member count.
func (s *Service) Trending(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.store.ActiveRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("active rooms: %w", err)
	}

	trending := make([]models.Room, len(rooms))
	copy(trending, rooms)
	sort.SliceStable(trending, func(i, j int) bool {
		return len(trending[i].Members) > len(trending[j].Members)
	})

	if len(trending) > TrendingSize {
		trending = trending[:TrendingSize]
	}
	return trending, nil
}

// SearchFilters narrows a directory search.
type SearchFilters struct {
	Topic     string
	IsPrivate *bool
	CreatedBy string
}

// Search filters the active directory by a free-text term over title,
// description and topic, plus optional structured filters. An empty search
// returns the whole directory.
func (s *Service) Search(ctx context.Context, term string, filters SearchFilters) ([]models.Room, error) {
	rooms, err := s.store.ActiveRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("active rooms: %w", err)
	}

	term = strings.ToLower(strings.TrimSpace(term))

	var results []models.Room
	for _, room := range rooms {
		if term != "" &&
			!strings.Contains(strings.ToLower(room.Title), term) &&
			!strings.Contains(strings.ToLower(room.Description), term) &&
			!strings.Contains(strings.ToLower(room.Topic), term) {
			continue
		}
		if filters.Topic != "" && room.Topic != filters.Topic {
			continue
		}
		if filters.IsPrivate != nil && room.IsPrivate != *filters.IsPrivate {
			continue
		}
		if filters.CreatedBy != "" && room.CreatedBy != filters.CreatedBy {
			continue
		}
		results = append(results, room)
	}
	return results, nil
}

// Get returns a single room by id, or an error from the protocol taxonomy.
func (s *Service) Get(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, roomerr.ErrNotFound
	}
	return room, nil
}
