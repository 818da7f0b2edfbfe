package chathub

import (
	"encoding/json"
	"errors"
	"log"

	"gosip/backend/internal/models"
	"gosip/backend/internal/storage"

	"github.com/google/uuid"
)

// InboundEvent pairs a decoded client envelope with the connection it
// arrived on.
type InboundEvent struct {
	Client Client
	Event  models.ClientEvent
}

// Hub owns the presence registry and routes every inbound event to the
// gateway services. One Run goroutine drains the channels; each event is
// handled on its own goroutine and may block on storage without stalling
// the others.
type Hub struct {
	Registry *Registry
	Storage  storage.Storage

	IncomingCh   chan InboundEvent
	RegisterCh   chan Client
	UnregisterCh chan Client

	Router        *MessageRouter
	Relationships *RelationshipCoordinator
	Groups        *GroupLifecycleManager

	emitter    Emitter
	instanceID string
}

// NewHub wires the registry, the services and the event bridge together.
func NewHub(s storage.Storage) *Hub {
	registry := NewRegistry()
	instanceID := uuid.New().String()
	emitter := &Broadcaster{Registry: registry, Storage: s, InstanceID: instanceID}

	return &Hub{
		Registry:      registry,
		Storage:       s,
		IncomingCh:    make(chan InboundEvent),
		RegisterCh:    make(chan Client),
		UnregisterCh:  make(chan Client),
		Router:        NewMessageRouter(s, emitter),
		Relationships: NewRelationshipCoordinator(s, registry, emitter),
		Groups:        NewGroupLifecycleManager(s, emitter),
		emitter:       emitter,
		instanceID:    instanceID,
	}
}

// Run is the hub's main loop. Call it in its own goroutine.
func (h *Hub) Run() {
	h.StartPubSubListener()

	for {
		select {
		case client := <-h.RegisterCh:
			// Presence is only established by an explicit join event; at this
			// point the connection has merely passed the auth gate.
			log.Printf("Connection established for %s", client.GetGoSipID())

		case client := <-h.UnregisterCh:
			go h.handleDisconnect(client)

		case ev := <-h.IncomingCh:
			go h.dispatch(ev)
		}
	}
}

// handleJoin registers presence, sends the caller its online-friends
// snapshot, and tells each of those friends the caller became reachable.
func (h *Hub) handleJoin(c Client) error {
	goSipID := c.GetGoSipID()
	if prev := h.Registry.Join(goSipID, c); prev != nil && prev != c {
		log.Printf("Presence for %s superseded by a new connection", goSipID)
	}

	user, err := h.Storage.FindUserByGoSipID(goSipID)
	if err != nil {
		return wrapStorage("find user", err)
	}

	online := h.Registry.Online(user.Friends)
	h.send(c, models.ServerEvent{Event: models.EventOnlineFriendsList, Data: online})

	notice := models.PresenceNotice{GoSipID: goSipID}
	for _, friend := range online {
		h.emitter.Emit(friend, models.EventUserOnline, notice)
	}
	return nil
}

// handleDisconnect removes the presence entry owned by this connection and
// tells the user's online friends they went unreachable. A connection that
// was superseded by a newer join leaves the newer entry alone.
func (h *Hub) handleDisconnect(c Client) {
	goSipID, ok := h.Registry.Leave(c)
	if !ok {
		return
	}
	log.Printf("Connection closed for %s", goSipID)

	user, err := h.Storage.FindUserByGoSipID(goSipID)
	if err != nil {
		log.Printf("ERROR: Failed to load %s for offline fan-out: %v", goSipID, err)
		return
	}
	if len(user.Friends) == 0 {
		return
	}

	notice := models.PresenceNotice{GoSipID: goSipID}
	for _, friend := range h.Registry.Online(user.Friends) {
		h.emitter.Emit(friend, models.EventUserOffline, notice)
	}
}

// dispatch decodes the payload for the event and calls the owning service.
// Failures are surfaced to the acting client as an actionFailed envelope;
// they are never silently dropped and never crash the handler.
func (h *Hub) dispatch(ev InboundEvent) {
	goSipID := ev.Client.GetGoSipID()

	var err error
	switch ev.Event.Event {
	case models.EventJoin:
		err = h.handleJoin(ev.Client)

	case models.EventSendMessage:
		var p models.SendMessagePayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Router.SendDirectMessage(goSipID, p)
		}

	case models.EventMarkAsRead:
		var p models.MarkAsReadPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Router.MarkRead(goSipID, p)
		}

	case models.EventTyping, models.EventStopTyping:
		var p models.TypingPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Router.Typing(goSipID, p, ev.Event.Event == models.EventStopTyping)
		}

	case models.EventSendFriendReq:
		var p models.FriendRequestPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Relationships.SendFriendRequest(goSipID, p)
		}

	case models.EventAcceptRequest:
		var p models.FriendRequestPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Relationships.AcceptRequest(goSipID, p)
		}

	case models.EventRemoveFriend:
		var p models.RemoveFriendPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Relationships.RemoveFriend(goSipID, p)
		}

	case models.EventCreateGroup:
		var p models.CreateGroupPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Groups.CreateGroup(goSipID, p)
		}

	case models.EventChangeGroupName:
		var p models.GroupNamePayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Groups.Rename(goSipID, p)
		}

	case models.EventChangeGroupPic:
		var p models.GroupAvatarPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Groups.ChangeAvatar(goSipID, p)
		}

	case models.EventAddMembers:
		var p models.AddMembersPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Groups.AddMembers(goSipID, p)
		}

	case models.EventLeaveGroup:
		var p models.GroupRoomPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Groups.LeaveGroup(goSipID, p)
		}

	case models.EventLeaveGroupAdmin:
		var p models.LeaveGroupAdminPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Groups.LeaveGroupAsAdmin(goSipID, p)
		}

	case models.EventDeleteGroup:
		var p models.GroupRoomPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Groups.DeleteGroup(goSipID, p)
		}

	case models.EventSendGroupMessage:
		var p models.GroupMessagePayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Router.SendGroupMessage(goSipID, p)
		}

	case models.EventGroupMarkAsRead:
		var p models.GroupRoomPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Router.MarkGroupRead(goSipID, p)
		}

	case models.EventGroupTyping, models.EventGroupStopTyping:
		var p models.GroupRoomPayload
		if err = decode(ev.Event.Data, &p); err == nil {
			err = h.Router.GroupTyping(goSipID, p, ev.Event.Event == models.EventGroupStopTyping)
		}

	default:
		err = invalid("unknown event %q", ev.Event.Event)
	}

	if err != nil {
		log.Printf("Event %s from %s failed: %v", ev.Event.Event, goSipID, err)
		h.send(ev.Client, models.ServerEvent{
			Event: models.EventActionFailed,
			Data: models.ActionFailedNotice{
				Event: ev.Event.Event,
				Error: errorMessage(err),
			},
		})
	}
}

// send pushes an envelope straight to a connection without blocking.
func (h *Hub) send(c Client, env models.ServerEvent) {
	select {
	case c.GetSendChannel() <- env:
	default:
		log.Printf("Dropping %s for %s: send buffer full", env.Event, c.GetGoSipID())
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return invalid("payload is required")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return invalid("malformed payload: %v", err)
	}
	return nil
}

// errorMessage keeps internal detail out of what clients see for storage
// failures while passing validation and not-found messages through.
func errorMessage(err error) string {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return "operation failed, please retry"
	}
	return err.Error()
}
