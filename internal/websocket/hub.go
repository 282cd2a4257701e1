package websocket

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type subscription struct {
	client *Client
	topic  string
	add    bool
}

type publication struct {
	topic   string
	message []byte
}

// Hub maintains the set of active clients and fans published messages out to
// the clients subscribed to a topic. All maps are owned by the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	subscribe chan subscription
	publish   chan publication
	done      chan struct{}
	stopOnce  sync.Once

	// A map of topics to the set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		subscribe:     make(chan subscription),
		publish:       make(chan publication, 256),
		done:          make(chan struct{}),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				client.close()
			}
			h.clients = make(map[*Client]bool)
			h.subscriptions = make(map[string]map[*Client]bool)
			return
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Str("client_id", client.ID).Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				h.removeSubscriptions(client)
				log.Info().Str("client_id", client.ID).Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			if sub.add {
				h.addSubscription(sub.client, sub.topic)
			} else {
				h.removeSubscription(sub.client, sub.topic)
			}
		case pub := <-h.publish:
			for client := range h.subscriptions[pub.topic] {
				if !client.Deliver(pub.message) {
					log.Warn().Str("client_id", client.ID).Str("topic", pub.topic).Msg("Client send buffer full, dropping message")
				}
			}
		}
	}
}

// Add registers client with the hub.
func (h *Hub) Add(client *Client) {
	select {
	case h.Register <- client:
	case <-h.done:
		client.close()
	}
}

// Remove unregisters client and ends its write pump.
func (h *Hub) Remove(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
		client.close()
	}
}

// Stop ends Run and drops every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Subscribe adds client to topic.
func (h *Hub) Subscribe(client *Client, topic string) {
	select {
	case h.subscribe <- subscription{client: client, topic: topic, add: true}:
	case <-h.done:
	}
}

// Unsubscribe removes client from topic.
func (h *Hub) Unsubscribe(client *Client, topic string) {
	select {
	case h.subscribe <- subscription{client: client, topic: topic}:
	case <-h.done:
	}
}

// Publish sends message to every client subscribed to topic. It never blocks
// the caller on slow clients.
func (h *Hub) Publish(topic string, message []byte) {
	select {
	case h.publish <- publication{topic: topic, message: message}:
	case <-h.done:
	default:
		log.Warn().Str("topic", topic).Msg("Hub publish queue full, dropping message")
	}
}

func (h *Hub) addSubscription(client *Client, topic string) {
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[*Client]bool)
	}
	h.subscriptions[topic][client] = true
}

func (h *Hub) removeSubscription(client *Client, topic string) {
	if subs, ok := h.subscriptions[topic]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, topic)
		}
	}
}

func (h *Hub) removeSubscriptions(client *Client) {
	for topic := range h.subscriptions {
		h.removeSubscription(client, topic)
	}
}
