package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/ageniuscoder/blinkchat/internal/chatid"
	"github.com/ageniuscoder/blinkchat/internal/eventlog"
	"github.com/ageniuscoder/blinkchat/internal/presence"
	"github.com/ageniuscoder/blinkchat/internal/store"
)

// Hub owns the live connections. Each connection's events are handled
// on its own read goroutine, so one session waiting on a store write
// never blocks the others; the Run loop only serializes registration.
type Hub struct {
	store    *store.Store
	presence presence.Registry
	log      eventlog.Log

	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	handles map[string]*Client // handle id -> connection
}

func NewHub(st *store.Store, reg presence.Registry, lg eventlog.Log) *Hub {
	return &Hub{
		store:      st,
		presence:   reg,
		log:        lg,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		handles:    make(map[string]*Client),
	}
}

func (h *Hub) Run() {
	// Store and presence calls below use Background on purpose: a
	// connection dropping mid-operation must not roll back work done
	// on its behalf.
	ctx := context.Background()
	for {
		select {
		case client := <-h.register:
			if err := h.presence.Mark(ctx, client.UserID, client.Handle); err != nil {
				log.Printf("[hub] mark %s online: %v", client.UserID, err)
			}
			h.mu.Lock()
			h.handles[client.Handle] = client
			h.mu.Unlock()

			h.sendOnlineList(ctx, client)
			h.broadcastExcept(client, presenceEvent{Type: "userOnline", UserID: client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			_, known := h.handles[client.Handle]
			if known {
				delete(h.handles, client.Handle)
				client.closeSend()
			}
			h.mu.Unlock()
			if !known {
				continue
			}
			// Only clears the entry if this handle still owns it; a
			// reconnect that already overwrote it stays marked.
			if err := h.presence.Unmark(ctx, client.UserID, client.Handle); err != nil {
				log.Printf("[hub] unmark %s: %v", client.UserID, err)
			}
			h.broadcastExcept(client, presenceEvent{Type: "userOffline", UserID: client.UserID})
		}
	}
}

// HandleSend persists the message, mirrors it to the event log and fans
// it out to the sender and, when reachable, the receiver. The sender
// gets the full record back so an optimistic client can reconcile by
// message id.
func (h *Hub) HandleSend(c *Client, ev inboundEvent) {
	ctx := context.Background()
	if ev.ReceiverID == "" || (ev.Content == "" && ev.AttachmentURL == "") {
		h.sendError(c, "Missing receiverId or content/attachment")
		return
	}

	m, err := h.store.Append(ctx, c.UserID, ev.ReceiverID, ev.Content, store.Attachment{
		URL:  ev.AttachmentURL,
		Type: ev.AttachmentType,
		Name: ev.AttachmentName,
	})
	if err != nil {
		log.Printf("[hub] append from %s: %v", c.UserID, err)
		h.sendError(c, "Failed to send message")
		return
	}

	// The direct write above is authoritative; a publish failure is
	// logged and delivery carries on.
	if err := h.log.Publish(ctx, eventlog.Event{ChatID: m.ChatID, Message: m, AlreadySaved: true}); err != nil {
		log.Printf("[hub] publish message %d: %v", m.ID, err)
	}

	out := receiveMessageEvent{Type: "receiveMessage", Message: m}
	h.sendTo(c, out)
	h.deliverTo(ctx, ev.ReceiverID, out)
}

// HandleDelete applies one of the two deletion visibilities. Delete for
// everyone is checked against the persisted sender, never against
// anything the client claims.
func (h *Hub) HandleDelete(c *Client, ev inboundEvent) {
	ctx := context.Background()
	if ev.ReceiverID == "" || ev.MessageID == 0 {
		h.sendError(c, "Missing receiverId or messageId")
		return
	}
	chatID := chatid.ChatID(c.UserID, ev.ReceiverID)

	if ev.DeleteForEveryone {
		m, err := h.store.Find(ctx, chatID, ev.MessageID)
		if errors.Is(err, store.ErrNotFound) {
			h.sendError(c, "Message not found")
			return
		}
		if err != nil {
			log.Printf("[hub] find %s/%d: %v", chatID, ev.MessageID, err)
			h.sendError(c, "Failed to delete message")
			return
		}
		if m.Sender != c.UserID {
			h.sendError(c, "Only the sender can delete for everyone")
			return
		}
		if err := h.store.EraseForEveryone(ctx, chatID, ev.MessageID); err != nil {
			log.Printf("[hub] erase %s/%d: %v", chatID, ev.MessageID, err)
			h.sendError(c, "Failed to delete message")
			return
		}
		out := messageDeletedEvent{Type: "messageDeleted", ChatID: chatID, MessageID: ev.MessageID, DeleteForEveryone: true}
		h.sendTo(c, out)
		h.deliverTo(ctx, ev.ReceiverID, out)
		return
	}

	if err := h.store.HideForViewer(ctx, chatID, ev.MessageID, c.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendError(c, "Message not found")
			return
		}
		log.Printf("[hub] hide %s/%d: %v", chatID, ev.MessageID, err)
		h.sendError(c, "Failed to delete message")
		return
	}
	h.sendTo(c, messageDeletedEvent{Type: "messageDeleted", ChatID: chatID, MessageID: ev.MessageID})
}

// HandleReaction toggles the caller's reaction and returns the
// message's updated reaction set to the caller.
func (h *Hub) HandleReaction(c *Client, ev inboundEvent) {
	ctx := context.Background()
	if ev.ReceiverID == "" || ev.MessageID == 0 || ev.Reaction == "" {
		h.sendError(c, "Missing receiverId, messageId or reaction")
		return
	}
	chatID := chatid.ChatID(c.UserID, ev.ReceiverID)

	current, err := h.store.ToggleReaction(ctx, chatID, ev.MessageID, c.UserID, ev.Reaction)
	if errors.Is(err, store.ErrNotFound) {
		h.sendError(c, "Message not found")
		return
	}
	if err != nil {
		log.Printf("[hub] toggle reaction %s/%d: %v", chatID, ev.MessageID, err)
		h.sendError(c, "Failed to toggle reaction")
		return
	}
	reactions, err := h.store.ReactionsFor(ctx, chatID, ev.MessageID)
	if err != nil {
		log.Printf("[hub] list reactions %s/%d: %v", chatID, ev.MessageID, err)
		h.sendError(c, "Failed to toggle reaction")
		return
	}
	h.sendTo(c, reactionUpdatedEvent{
		Type:         "reactionUpdated",
		ChatID:       chatID,
		MessageID:    ev.MessageID,
		Reactions:    reactions,
		UserReaction: current,
	})
}

// sendOnlineList tells a freshly connected client who is reachable
// right now, excluding itself.
func (h *Hub) sendOnlineList(ctx context.Context, c *Client) {
	online, err := h.presence.Online(ctx)
	if err != nil {
		log.Printf("[hub] list online: %v", err)
		online = nil
	}
	userIDs := make([]string, 0, len(online))
	for _, u := range online {
		if u != c.UserID {
			userIDs = append(userIDs, u)
		}
	}
	h.sendTo(c, onlineUsersListEvent{Type: "onlineUsersList", UserIDs: userIDs})
}

// deliverTo fans an event out to a user's live connection, if the
// presence registry resolves one. A user marked absent simply misses
// live delivery and recovers the state through history.
func (h *Hub) deliverTo(ctx context.Context, user string, v any) {
	handle, ok, err := h.presence.Lookup(ctx, user)
	if err != nil {
		log.Printf("[hub] lookup %s: %v", user, err)
		return
	}
	if !ok {
		return
	}
	h.mu.RLock()
	client := h.handles[handle]
	h.mu.RUnlock()
	if client != nil {
		h.sendTo(client, v)
	}
}

func (h *Hub) broadcastExcept(except *Client, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("[hub] marshal broadcast: %v", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.handles {
		if client == except {
			continue
		}
		if !client.trySend(payload) {
			log.Printf("[hub] dropped broadcast to slow client %s", client.UserID)
		}
	}
}

func (h *Hub) sendTo(c *Client, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("[hub] marshal event: %v", err)
		return
	}
	if !c.trySend(payload) {
		log.Printf("[hub] dropped event for slow or departed client %s", c.UserID)
	}
}

func (h *Hub) sendError(c *Client, msg string) {
	h.sendTo(c, errorEvent{Type: "error", Message: msg})
}
