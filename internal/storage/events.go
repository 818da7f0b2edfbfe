package storage

import (
	"encoding/json"

	"gosip/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis Pub/Sub channel every gateway instance shares.
const EventsChannel = "gosip:events"

// EventEnvelope wraps a server event for the cross-instance bridge. Origin
// identifies the publishing instance so subscribers can skip their own
// publications; To names the recipient identity.
type EventEnvelope struct {
	Origin string             `json:"origin"`
	To     string             `json:"to"`
	Event  models.ServerEvent `json:"event"`
}

// PublishEvent pushes an envelope onto the shared events channel so peers
// holding the recipient's connection can deliver it.
func (s *Service) PublishEvent(env EventEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, EventsChannel, payload).Err()
}

// SubscribeEvents subscribes to the shared events channel.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, EventsChannel)
}
