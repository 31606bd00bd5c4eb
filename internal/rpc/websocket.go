package rpc

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/core/auction"
	"github.com/clearbid/auctiond/internal/logging"
)

// sendBufferSize is the per-client outbound queue. A client that falls this
// far behind is disconnected rather than allowed to stall the feed.
const sendBufferSize = 64

// Feed broadcasts engine events to WebSocket subscribers. It implements
// auction.Notifier, so wiring it into the engine's notifier chain is all
// the integration needed.
type Feed struct {
	upgrader websocket.Upgrader
	log      logging.Logger

	mu      sync.RWMutex
	clients map[*feedClient]struct{}
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewFeed creates the event feed.
func NewFeed(log logging.Logger) *Feed {
	if log == nil {
		log = logging.Disabled
	}
	return &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*feedClient]struct{}),
	}
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Debugf("websocket upgrade from %s: %v", r.RemoteAddr, err)
		return
	}

	client := &feedClient{conn: conn, send: make(chan []byte, sendBufferSize)}
	f.mu.Lock()
	f.clients[client] = struct{}{}
	f.mu.Unlock()
	f.log.Debugf("websocket client connected: %s", r.RemoteAddr)

	go f.writePump(client)
	f.readPump(client)
}

// readPump drains inbound frames so pings are answered, dropping the client
// on error. The feed is broadcast-only; inbound payloads are discarded.
func (f *Feed) readPump(client *feedClient) {
	defer f.drop(client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(client *feedClient) {
	for data := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			f.drop(client)
			return
		}
	}
}

func (f *Feed) drop(client *feedClient) {
	f.mu.Lock()
	_, open := f.clients[client]
	if open {
		delete(f.clients, client)
		close(client.send)
	}
	f.mu.Unlock()
	if open {
		client.conn.Close()
	}
}

// broadcast fans a message out to every connected client, dropping any
// whose queue is full.
func (f *Feed) broadcast(event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		f.log.Errorf("marshal feed event: %v", err)
		return
	}

	f.mu.RLock()
	stalled := make([]*feedClient, 0)
	for client := range f.clients {
		select {
		case client.send <- data:
		default:
			stalled = append(stalled, client)
		}
	}
	f.mu.RUnlock()

	for _, client := range stalled {
		f.log.Debugf("dropping stalled websocket client")
		f.drop(client)
	}
}

// SubscriberCount reports the number of connected clients.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects every client.
func (f *Feed) Close() {
	f.mu.Lock()
	clients := make([]*feedClient, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.mu.Unlock()
	for _, client := range clients {
		f.drop(client)
	}
}

// auction.Notifier implementation.

func (f *Feed) AllowListChanged(class asset.Class, allowed bool) {
	f.broadcast(&AllowListChangedEvent{Type: EventAllowList, Class: string(class), Allowed: allowed})
}

func (f *Feed) ServiceConfigChanged(cfg auction.ServiceConfig) {
	f.broadcast(newConfigChangedEvent(cfg))
}

func (f *Feed) BidPlaced(key asset.Key, bidder account.ID, price, endsAt uint64) {
	f.broadcast(newBidPlacedEvent(key, bidder, price, endsAt))
}

func (f *Feed) AssetDeposited(key asset.Key, seller account.ID, startPrice, endsAt uint64) {
	f.broadcast(newAssetDepositedEvent(key, seller, startPrice, endsAt))
}

func (f *Feed) AssetWithdrawn(key asset.Key, to account.ID, sold bool, finalPrice uint64, closed auction.Listing) {
	f.broadcast(newAssetWithdrawnEvent(key, to, sold, finalPrice, closed))
}
