package services

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"boundless-travel/internal/metrics"
	"boundless-travel/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
)

// Push message types
const (
	PushTypeConnectionEstablished = "connection_established"
	PushTypeMintUpdate            = "mint_update"
)

// Connection one websocket client of a wallet
type Connection struct {
	ID          string          `json:"id"`
	UserAddress string          `json:"user_address"`
	Conn        *websocket.Conn `json:"-"`
	Send        chan []byte     `json:"-"`
	LastPing    time.Time       `json:"last_ping"`
}

// PushMessage envelope of every pushed message
type PushMessage struct {
	Type        string      `json:"type"`
	Timestamp   string      `json:"timestamp"`
	MessageID   string      `json:"message_id"`
	UserAddress string      `json:"user_address"`
	Data        interface{} `json:"data"`
}

// MintUpdateData payload of a mint_update message
type MintUpdateData struct {
	Attempt     models.MintAttempt `json:"attempt"`
	UserMessage string             `json:"user_message"`
}

var mintOutcomeMessages = map[models.MintOutcome]string{
	models.MintOutcomePending:   "⏳ Preparing your VPass mint...",
	models.MintOutcomeSubmitted: "📤 Mint transaction submitted, waiting for confirmation...",
	models.MintOutcomeConfirmed: "🎉 VPass minted!",
	models.MintOutcomeReverted:  "❌ Mint transaction reverted",
	models.MintOutcomeFailed:    "⚠️ Mint failed, please retry",
	models.MintOutcomeTimedOut:  "⏰ Relay signature did not arrive in time, please retry",
	models.MintOutcomeCancelled: "🛑 Mint cancelled",
}

// NotificationService pushes mint progress to connected wallets over websocket
type NotificationService struct {
	upgrader    websocket.Upgrader
	connections map[string]*Connection   // key: connection id
	userConns   map[string][]*Connection // key: lower-cased address
	hub         chan PushMessage
	register    chan *Connection
	unregister  chan *Connection
	done        chan struct{}
	closeOnce   sync.Once
	mutex       sync.RWMutex
}

// NewNotificationService starts the push hub; allowedOrigins empty accepts any origin
func NewNotificationService(allowedOrigins []string) *NotificationService {
	s := &NotificationService{
		connections: make(map[string]*Connection),
		userConns:   make(map[string][]*Connection),
		hub:         make(chan PushMessage, 256),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		done:        make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	go s.run()
	return s
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[strings.TrimRight(origin, "/")]
	}
}

func (s *NotificationService) run() {
	for {
		select {
		case conn := <-s.register:
			s.handleRegister(conn)
		case conn := <-s.unregister:
			s.handleUnregister(conn)
		case message := <-s.hub:
			s.handleBroadcast(message)
		case <-s.done:
			s.closeAll()
			return
		}
	}
}

// Close stops the hub and closes every connection
func (s *NotificationService) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func userKey(address string) string {
	return strings.ToLower(address)
}

func (s *NotificationService) handleRegister(conn *Connection) {
	s.mutex.Lock()
	s.connections[conn.ID] = conn
	key := userKey(conn.UserAddress)
	s.userConns[key] = append(s.userConns[key], conn)
	s.mutex.Unlock()
	metrics.WebSocketConnections.Inc()

	log.Printf("📱 WebSocket connection registered: user=%s, connID=%s", conn.UserAddress, conn.ID)

	s.sendToConnection(conn, PushMessage{
		Type:        PushTypeConnectionEstablished,
		Timestamp:   time.Now().Format(time.RFC3339),
		MessageID:   uuid.NewString(),
		UserAddress: conn.UserAddress,
		Data: map[string]interface{}{
			"user_address":  conn.UserAddress,
			"connection_id": conn.ID,
		},
	})
}

func (s *NotificationService) handleUnregister(conn *Connection) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.connections[conn.ID]; !ok {
		return
	}
	delete(s.connections, conn.ID)

	key := userKey(conn.UserAddress)
	conns := s.userConns[key]
	for i, c := range conns {
		if c.ID == conn.ID {
			s.userConns[key] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(s.userConns[key]) == 0 {
		delete(s.userConns, key)
	}

	close(conn.Send)
	metrics.WebSocketConnections.Dec()
	log.Printf("📱 WebSocket connection unregistered: user=%s, connID=%s", conn.UserAddress, conn.ID)
}

func (s *NotificationService) closeAll() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for id, conn := range s.connections {
		close(conn.Send)
		delete(s.connections, id)
		metrics.WebSocketConnections.Dec()
	}
	s.userConns = make(map[string][]*Connection)
}

func (s *NotificationService) handleBroadcast(message PushMessage) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	conns := s.userConns[userKey(message.UserAddress)]
	if len(conns) == 0 {
		return
	}
	for _, conn := range conns {
		s.sendToConnection(conn, message)
	}
}

func (s *NotificationService) sendToConnection(conn *Connection, message PushMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Failed to marshal push message: %v", err)
		return
	}
	select {
	case conn.Send <- data:
	default:
		log.Printf("⚠️ Push to connection %s dropped (channel full)", conn.ID)
	}
}

// HandleWebSocket upgrades the request and subscribes it to pushes for userAddress
func (s *NotificationService) HandleWebSocket(w http.ResponseWriter, r *http.Request, userAddress string) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	conn := &Connection{
		ID:          "conn_" + uuid.NewString(),
		UserAddress: userAddress,
		Conn:        ws,
		Send:        make(chan []byte, 64),
		LastPing:    time.Now(),
	}

	select {
	case s.register <- conn:
	case <-s.done:
		ws.Close()
		return
	}

	go s.writePump(conn)
	go s.readPump(conn)
}

func (s *NotificationService) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("❌ Write message failed: %v", err)
				return
			}
		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *NotificationService) readPump(conn *Connection) {
	defer func() {
		select {
		case s.unregister <- conn:
		case <-s.done:
		}
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(maxMessageSize)
	conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket read error: %v", err)
			}
			return
		}
	}
}

// NotifyMintAttempt pushes the current state of attempt to its account
func (s *NotificationService) NotifyMintAttempt(attempt *models.MintAttempt) {
	if attempt == nil {
		return
	}
	msg := PushMessage{
		Type:        PushTypeMintUpdate,
		Timestamp:   time.Now().Format(time.RFC3339),
		MessageID:   uuid.NewString(),
		UserAddress: attempt.Account,
		Data: MintUpdateData{
			Attempt:     *attempt,
			UserMessage: mintOutcomeMessages[attempt.Outcome],
		},
	}
	select {
	case s.hub <- msg:
	case <-s.done:
	default:
		log.Printf("⚠️ Push hub full, dropping mint update %s", attempt.ID)
	}
}

// ActiveConnections number of open connections
func (s *NotificationService) ActiveConnections() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.connections)
}

// UserConnections number of open connections of address
func (s *NotificationService) UserConnections(address string) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.userConns[userKey(address)])
}
