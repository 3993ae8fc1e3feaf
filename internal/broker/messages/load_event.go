package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/BearBump/DriverComm/internal/models"
)

const (
	LoadEventCreated       = "created"
	LoadEventStatusChanged = "status_changed"
)

// LoadEvent: сообщение топика load.events, ключ = id груза.
type LoadEvent struct {
	EventID string `json:"eventId"`
	Kind    string `json:"kind"`

	LoadID      string `json:"loadId"`
	Status      string `json:"status"`
	ETA         string `json:"eta,omitempty"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Lane        string `json:"lane"`

	OriginLocationID      *int64 `json:"originLocationId,omitempty"`
	DestinationLocationID *int64 `json:"destinationLocationId,omitempty"`

	OccurredAt time.Time `json:"occurredAt"`
}

func NewLoadEvent(kind string, l *models.Load) LoadEvent {
	return LoadEvent{
		EventID:               uuid.NewString(),
		Kind:                  kind,
		LoadID:                l.ID,
		Status:                l.Status,
		ETA:                   l.ETA,
		Origin:                l.Origin,
		Destination:           l.Destination,
		Lane:                  l.Lane,
		OriginLocationID:      l.OriginLocationID,
		DestinationLocationID: l.DestinationLocationID,
		OccurredAt:            time.Now().UTC(),
	}
}

// Load восстанавливает поля груза, нужные для шаблонов уведомлений.
func (e LoadEvent) Load() *models.Load {
	return &models.Load{
		ID:                    e.LoadID,
		Status:                e.Status,
		ETA:                   e.ETA,
		Origin:                e.Origin,
		Destination:           e.Destination,
		Lane:                  e.Lane,
		OriginLocationID:      e.OriginLocationID,
		DestinationLocationID: e.DestinationLocationID,
	}
}

// LocationIDs: уникальные id локаций отправления и назначения.
func (e LoadEvent) LocationIDs() []int64 {
	var out []int64
	for _, p := range []*int64{e.OriginLocationID, e.DestinationLocationID} {
		if p == nil || *p <= 0 {
			continue
		}
		if len(out) == 1 && out[0] == *p {
			continue
		}
		out = append(out, *p)
	}
	return out
}
