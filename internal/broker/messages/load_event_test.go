package messages

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/BearBump/DriverComm/internal/models"
)

func TestNewLoadEvent(t *testing.T) {
	o, d := int64(3), int64(3)
	l := &models.Load{ID: "LD-1", Status: "Arrived", Origin: "A", Destination: "B", Lane: "A → B", OriginLocationID: &o, DestinationLocationID: &d}

	e := NewLoadEvent(LoadEventStatusChanged, l)
	_, err := uuid.Parse(e.EventID)
	require.NoError(t, err)
	require.Equal(t, "LD-1", e.LoadID)
	require.False(t, e.OccurredAt.IsZero())
	require.Equal(t, []int64{3}, e.LocationIDs())

	back := e.Load()
	require.Equal(t, "A → B", back.Lane)
	require.Equal(t, "Arrived", back.Status)
}

func TestLoadEvent_LocationIDs(t *testing.T) {
	o, d := int64(1), int64(2)
	require.Equal(t, []int64{1, 2}, LoadEvent{OriginLocationID: &o, DestinationLocationID: &d}.LocationIDs())
	require.Equal(t, []int64{2}, LoadEvent{DestinationLocationID: &d}.LocationIDs())
	require.Empty(t, LoadEvent{}.LocationIDs())
}
