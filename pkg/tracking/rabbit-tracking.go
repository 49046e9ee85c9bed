package tracking

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/matst80/casa-finder/pkg/common"
	"github.com/matst80/casa-finder/pkg/messaging"
	"github.com/matst80/casa-finder/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventSession  uint16 = 0
	EventSearch   uint16 = 1
	EventFavorite uint16 = 2
)

var noTrackingErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "casa_finder_tracking_errors_total",
	Help: "The total number of tracking events that could not be published",
})

type BaseEvent struct {
	SessionId string    `json:"session_id"`
	Context   string    `json:"context,omitempty"`
	Event     uint16    `json:"event"`
	Time      time.Time `json:"time"`
}

type Session struct {
	*BaseEvent
	UserAgent    string `json:"user_agent,omitempty"`
	Ip           string `json:"ip,omitempty"`
	Language     string `json:"language,omitempty"`
	PragmaHeader string `json:"pragma,omitempty"`
}

type Search struct {
	*BaseEvent
	SearchEvent
}

type Favorite struct {
	*BaseEvent
	Id    types.PropertyId `json:"id"`
	Added bool             `json:"added"`
}

// RabbitTracking queues events and publishes them in batches to the tracking topic.
type RabbitTracking struct {
	prefix     string
	context    string
	connection *amqp.Connection
	channel    messaging.Publisher
	queue      *common.QueueHandler[any]
	logger     *slog.Logger
}

func NewRabbitTracking(url, prefix string, logger *slog.Logger) (*RabbitTracking, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := messaging.DefineTopic(ch, prefix, messaging.TrackingTopic); err != nil {
		conn.Close()
		return nil, err
	}
	t := newRabbitTracking(ch, prefix, logger)
	t.connection = conn
	return t, nil
}

func newRabbitTracking(ch messaging.Publisher, prefix string, logger *slog.Logger) *RabbitTracking {
	t := &RabbitTracking{
		prefix:  prefix,
		context: "web",
		channel: ch,
		logger:  logger,
	}
	t.queue = common.NewQueueHandler(t.publish, 50, time.Second)
	return t
}

func (t *RabbitTracking) publish(events []any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := messaging.SendBatch(ctx, t.channel, t.prefix, messaging.TrackingTopic, events); err != nil {
		noTrackingErrors.Inc()
		t.logger.Error("failed to send tracking events", "events", len(events), "error", err)
	}
}

func (t *RabbitTracking) base(sessionId string, event uint16) *BaseEvent {
	return &BaseEvent{SessionId: sessionId, Context: t.context, Event: event, Time: time.Now()}
}

func clientIp(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

func (t *RabbitTracking) TrackSession(sessionId string, r *http.Request) {
	t.queue.Add(Session{
		BaseEvent:    t.base(sessionId, EventSession),
		Language:     r.Header.Get("Accept-Language"),
		UserAgent:    r.UserAgent(),
		Ip:           clientIp(r),
		PragmaHeader: r.Header.Get("Pragma"),
	})
}

func (t *RabbitTracking) TrackSearch(sessionId string, search SearchEvent) {
	t.queue.Add(Search{
		BaseEvent:   t.base(sessionId, EventSearch),
		SearchEvent: search,
	})
}

func (t *RabbitTracking) TrackFavorite(sessionId string, id types.PropertyId, added bool) {
	t.queue.Add(Favorite{
		BaseEvent: t.base(sessionId, EventFavorite),
		Id:        id,
		Added:     added,
	})
}

// Close flushes queued events and closes the connection.
func (t *RabbitTracking) Close() error {
	t.queue.Close()
	if t.connection != nil {
		return t.connection.Close()
	}
	return nil
}
