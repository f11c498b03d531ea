package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-live/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-live/internal/domain/liveevent"
	"github.com/riskibarqy/fantasy-live/internal/domain/ticker"
	"github.com/riskibarqy/fantasy-live/internal/usecase"
)

type liveDTO struct {
	Gameweek     int                   `json:"gameweek"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Fixtures     []usecase.FixtureLive `json:"fixtures"`
	Entries      []entrySummaryDTO     `json:"entries"`
	LiveEvents   []liveevent.Event     `json:"live_events"`
	ChangeEvents []ticker.ChangeEvent  `json:"change_events"`
}

// entrySummaryDTO leaves the per-player breakdown to the entry endpoint.
type entrySummaryDTO struct {
	EntryID       int         `json:"entry_id"`
	Chip          lineup.Chip `json:"chip"`
	TotalPoints   int         `json:"total_points"`
	BenchPoints   int         `json:"bench_points"`
	Substitutions int         `json:"substitutions"`
	Anomalies     int         `json:"anomalies"`
}

func toLiveDTO(item usecase.GameweekLive) liveDTO {
	out := liveDTO{
		Gameweek:     item.Gameweek,
		UpdatedAt:    item.UpdatedAt,
		Fixtures:     item.Fixtures,
		Entries:      make([]entrySummaryDTO, 0, len(item.Entries)),
		LiveEvents:   item.LiveEvents,
		ChangeEvents: item.ChangeEvents,
	}
	if out.Fixtures == nil {
		out.Fixtures = []usecase.FixtureLive{}
	}
	if out.LiveEvents == nil {
		out.LiveEvents = []liveevent.Event{}
	}
	if out.ChangeEvents == nil {
		out.ChangeEvents = []ticker.ChangeEvent{}
	}
	for _, entry := range item.Entries {
		out.Entries = append(out.Entries, entrySummaryDTO{
			EntryID:       entry.EntryID,
			Chip:          entry.Chip,
			TotalPoints:   entry.TotalPoints,
			BenchPoints:   entry.BenchPoints,
			Substitutions: len(entry.Substitutions),
			Anomalies:     len(entry.Anomalies),
		})
	}
	return out
}
