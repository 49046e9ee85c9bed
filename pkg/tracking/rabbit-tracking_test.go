package tracking

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/matst80/casa-finder/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	mu     sync.Mutex
	bodies []map[string]any
	keys   []string
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var body map[string]any
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		return err
	}
	c.bodies = append(c.bodies, body)
	c.keys = append(c.keys, key)
	return nil
}

func TestEventsArePublishedOnClose(t *testing.T) {
	ch := &recordingChannel{}
	trk := newRabbitTracking(ch, "casa", slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := httptest.NewRequest("GET", "/api/session", nil)
	r.Header.Set("X-Real-Ip", "10.0.0.1")
	trk.TrackSession("s1", r)
	trk.TrackSearch("s1", SearchEvent{
		Filters:         types.NewBasicFilters(),
		AdvancedFilters: types.NewAdvancedFilters(),
		SortBy:          types.SortPriceAsc,
		Query:           "city=Roma",
		NumberOfResults: 3,
	})
	trk.TrackFavorite("s1", "p1", true)
	require.NoError(t, trk.Close())

	require.Len(t, ch.bodies, 3)
	assert.Equal(t, []string{"casa_tracking", "casa_tracking", "casa_tracking"}, ch.keys)
	assert.Equal(t, "10.0.0.1", ch.bodies[0]["ip"])
	assert.EqualValues(t, EventSearch, ch.bodies[1]["event"])
	assert.Equal(t, "city=Roma", ch.bodies[1]["query"])
	assert.EqualValues(t, 3, ch.bodies[1]["noi"])
	assert.Equal(t, "p1", ch.bodies[2]["id"])
	assert.Equal(t, true, ch.bodies[2]["added"])
}
