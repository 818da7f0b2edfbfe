package chathub

import (
	"encoding/json"
	"log"

	"gosip/backend/internal/storage"
)

// StartPubSubListener starts the goroutine that drains the Redis event
// bridge. Envelopes published by this instance are skipped; the rest are
// delivered to locally-resolved recipients. This is what lets presence and
// fan-out work when the gateway runs as more than one process.
func (h *Hub) StartPubSubListener() {
	go func() {
		pubsub := h.Storage.SubscribeEvents()
		if pubsub == nil {
			return
		}
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var env storage.EventEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("ERROR: Failed to unmarshal bridge envelope: %v", err)
				continue
			}
			if env.Origin == h.instanceID {
				continue
			}

			client, ok := h.Registry.Resolve(env.To)
			if !ok {
				continue
			}
			select {
			case client.GetSendChannel() <- env.Event:
			default:
				log.Printf("Dropping bridged %s for %s: send buffer full", env.Event.Event, env.To)
			}
		}
	}()
}
