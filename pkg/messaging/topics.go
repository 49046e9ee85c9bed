package messaging

type ChangeTopic string

const (
	TrackingTopic  ChangeTopic = "tracking"
	FavoritesTopic ChangeTopic = "favorites_changed"
)

// GetName is the exchange and queue name used for topic.
func GetName(prefix string, topic ChangeTopic) string {
	return getName(prefix, topic)
}
