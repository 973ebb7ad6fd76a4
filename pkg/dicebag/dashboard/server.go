package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chosenoffset/dicebag/pkg/dicebag"
	"github.com/chosenoffset/dicebag/pkg/dicebag/actions"
	"github.com/chosenoffset/dicebag/pkg/dicebag/metrics"
	"github.com/chosenoffset/dicebag/pkg/dicebag/parser"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// Roller performs a roll for an incoming request.
type Roller interface {
	Roll(notation string) (dicebag.RollRecord, error)
}

// Message is the envelope of every websocket frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

type Server struct {
	addr         string
	server       *http.Server
	mux          *http.ServeMux
	upgrader     websocket.Upgrader
	clients      map[*client]bool
	clientsMutex sync.RWMutex
	maxClients   int
	events       chan actions.Action
	stop         chan struct{}
	stopOnce     sync.Once
	loopOnce     sync.Once
	roller       Roller
	collector    *metrics.RollCollector
	httpMetrics  *metrics.HTTPMetrics
	logger       *zap.Logger
}

// NewServer returns a server listening on addr once started. Rolls
// requested over HTTP go through roller; history and statistics are read
// from collector.
func NewServer(addr string, roller Roller, collector *metrics.RollCollector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin:     sameOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients:     make(map[*client]bool),
		maxClients:  100, // Limit concurrent WebSocket connections
		events:      make(chan actions.Action, 100),
		stop:        make(chan struct{}),
		roller:      roller,
		collector:   collector,
		httpMetrics: metrics.NewHTTPMetrics(),
		logger:      logger,
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/", s.httpMetrics.Middleware("/", s.handleIndex))
	s.mux.HandleFunc("/api/roll", s.httpMetrics.Middleware("/api/roll", s.handleRoll))
	s.mux.HandleFunc("/api/history", s.httpMetrics.Middleware("/api/history", s.handleHistory))
	s.mux.HandleFunc("/api/stats", s.httpMetrics.Middleware("/api/stats", s.handleStats))

	// WebSocket endpoint
	s.mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// sameOrigin allows requests without an Origin header and requests whose
// Origin host matches the Host they were sent to.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// SetMaxClients bounds the number of concurrent websocket connections.
func (s *Server) SetMaxClients(n int) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	s.maxClients = n
}

// Handler returns the HTTP handler serving the dashboard and starts the
// broadcast loop if it is not running yet.
func (s *Server) Handler() http.Handler {
	s.loopOnce.Do(func() { go s.broadcast() })
	return s.mux
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown, including one that happened before Start.
func (s *Server) Start() error {
	s.Handler()
	s.logger.Info("Starting dicebag dashboard", zap.String("addr", s.addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the broadcast loop, closes websocket clients and drains
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	return s.server.Shutdown(ctx)
}

// SendRollUpdate queues an action for every connected websocket client.
// Updates are dropped when the queue is full.
func (s *Server) SendRollUpdate(action actions.Action) {
	select {
	case s.events <- action:
	default:
		s.logger.Debug("Dropping dashboard update", zap.String("type", string(action.Type)))
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	return len(s.clients)
}

type rollRequest struct {
	Notation string `json:"notation"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	var notation string
	switch r.Method {
	case http.MethodGet:
		notation = r.URL.Query().Get("notation")
	case http.MethodPost:
		var req rollRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		notation = req.Notation
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	record, err := s.roller.Roll(notation)
	if err != nil {
		var parseErr *parser.ParseError
		status := http.StatusInternalServerError
		if errors.As(err, &parseErr) || dicebag.IsLimitError(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.collector.History(limit))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rolls":   s.collector.Snapshot(),
		"http":    s.httpMetrics.GetStats(),
		"clients": s.ClientCount(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Check client limit before upgrading
	s.clientsMutex.RLock()
	full := len(s.clients) >= s.maxClients
	s.clientsMutex.RUnlock()

	if full {
		http.Error(w, "Maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	s.clientsMutex.Lock()
	s.clients[c] = true
	s.clientsMutex.Unlock()

	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, c)
		s.clientsMutex.Unlock()
	}()

	// Clients may start rolling once they see this frame.
	if err := s.sendTo(c, Message{Type: "welcome", Data: s.collector.Snapshot()}); err != nil {
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Reads are required to detect client disconnections
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					s.logger.Debug("WebSocket read error", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		case <-s.stop:
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *Server) sendTo(c *client, message Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

func (s *Server) broadcast() {
	for {
		select {
		case action := <-s.events:
			message := Message{Type: string(action.Type), Data: action}
			if action.Type == actions.RollAction && action.Payload != nil {
				message.Data = action.Payload
			}
			s.broadcastMessage(message)
		case <-s.stop:
			return
		}
	}
}

func (s *Server) broadcastMessage(message Message) {
	// Copy client connections to avoid holding lock during I/O
	s.clientsMutex.RLock()
	if len(s.clients) == 0 {
		s.clientsMutex.RUnlock()
		return
	}
	clientsCopy := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clientsCopy = append(clientsCopy, c)
	}
	s.clientsMutex.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("Error marshaling message", zap.Error(err))
		return
	}

	// Send to all clients, removing failed ones
	var failedClients []*client
	for _, c := range clientsCopy {
		if err := c.write(websocket.TextMessage, data); err != nil {
			c.conn.Close()
			failedClients = append(failedClients, c)
		}
	}

	if len(failedClients) > 0 {
		s.clientsMutex.Lock()
		for _, c := range failedClients {
			delete(s.clients, c)
		}
		s.clientsMutex.Unlock()
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>dicebag</title>
<style>
body { font-family: monospace; margin: 2em; }
#log li { margin: 0.2em 0; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>dicebag</h1>
<form id="roll">
<input id="notation" value="4d6kh3" autofocus>
<button type="submit">Roll</button>
<span id="error" class="error"></span>
</form>
<ul id="log"></ul>
<script>
const log = document.getElementById("log");
const errorEl = document.getElementById("error");
function add(text) {
  const li = document.createElement("li");
  li.textContent = text;
  log.prepend(li);
}
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (ev) => {
  const msg = JSON.parse(ev.data);
  if (msg.type === "roll") {
    add(msg.data.notation + ": " + msg.data.text + " = " + msg.data.total);
  } else if (msg.type === "rejected") {
    add(msg.data.notation + ": rejected (" + msg.data.message + ")");
  }
};
document.getElementById("roll").onsubmit = async (ev) => {
  ev.preventDefault();
  errorEl.textContent = "";
  const resp = await fetch("/api/roll", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({notation: document.getElementById("notation").value}),
  });
  if (!resp.ok) {
    errorEl.textContent = (await resp.json()).error;
  }
};
</script>
</body>
</html>
`
