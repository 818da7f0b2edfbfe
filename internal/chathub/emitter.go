package chathub

import (
	"log"

	"gosip/backend/internal/models"
	"gosip/backend/internal/storage"
)

// Emitter delivers one server event to one recipient identity. Delivery is
// best-effort: an unreachable recipient is the expected common case and a
// silent no-op for the realtime channel.
type Emitter interface {
	Emit(to, event string, data any)
}

// Broadcaster resolves recipients against the local presence registry and
// additionally publishes every envelope to the Redis bridge so gateway
// instances holding the recipient's connection can deliver it. Envelopes are
// tagged with the publishing instance so nobody double-delivers its own.
type Broadcaster struct {
	Registry   *Registry
	Storage    storage.Storage
	InstanceID string
}

// Emit sends the event to the recipient's local connection if present, then
// publishes it for peer instances. Publish failures are logged, never
// propagated: the primary write already happened and the peer will catch up
// on its next reconciliation read.
func (b *Broadcaster) Emit(to, event string, data any) {
	env := models.ServerEvent{Event: event, Data: data}
	b.deliverLocal(to, env)

	err := b.Storage.PublishEvent(storage.EventEnvelope{
		Origin: b.InstanceID,
		To:     to,
		Event:  env,
	})
	if err != nil {
		log.Printf("ERROR: Failed to publish %s for %s to event bridge: %v", event, to, err)
	}
}

// deliverLocal pushes the envelope onto the recipient's send channel without
// blocking. A full buffer means the client is too slow; the envelope is
// dropped and the peer reconciles through the CRUD surface later.
func (b *Broadcaster) deliverLocal(to string, env models.ServerEvent) {
	client, ok := b.Registry.Resolve(to)
	if !ok {
		return
	}
	select {
	case client.GetSendChannel() <- env:
	default:
		log.Printf("Dropping %s for %s: send buffer full", env.Event, to)
	}
}
