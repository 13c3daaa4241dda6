// Package ws serves a live preview of every output, diagnostics and a small
// control channel over websockets.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/ambilight/internal/diagnostics"
	"github.com/coreman2200/ambilight/internal/pattern"
	"github.com/coreman2200/ambilight/internal/render"
)

const writeWait = 200 * time.Millisecond

// OutputInfo describes an output to preview clients.
type OutputInfo struct {
	Index     int    `json:"index"`
	Type      string `json:"type"`
	Order     string `json:"order"`
	Leds      int    `json:"leds"`
	Transport bool   `json:"transport"`
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub fans frames and diagnostics out to websocket clients and holds the
// parameters set through the control channel.
type Hub struct {
	mu      sync.RWMutex
	outputs []OutputInfo
	status  []int
	params  render.Params
	pattern pattern.Kind
	program ProgramCommand
	fps     int

	frameID     uint64
	startTime   time.Time
	clients     map[*client]bool
	diagClients map[*client]bool

	up  websocket.Upgrader
	log zerolog.Logger
}

func NewHub(outputs []OutputInfo, params render.Params, fps int) *Hub {
	return &Hub{
		outputs:     outputs,
		status:      make([]int, len(outputs)),
		params:      params,
		fps:         fps,
		startTime:   time.Now(),
		clients:     map[*client]bool{},
		diagClients: map[*client]bool{},
		up:          websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:         log.Logger.With().Str("component", "ws").Logger(),
	}
}

// Handler routes the preview endpoints.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("/control", h.HandleControlWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return withCORS(mux)
}

func (h *Hub) accept(w http.ResponseWriter, r *http.Request, set map[*client]bool) *client {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return nil
	}
	c := &client{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	set[c] = true
	h.mu.Unlock()
	h.log.Debug().Str("client", c.id).Str("path", r.URL.Path).Msg("client connected")
	return c
}

// drain reads until the peer goes away, then forgets the client.
func (h *Hub) drain(c *client, set map[*client]bool) {
	defer func() {
		h.mu.Lock()
		delete(set, c)
		h.mu.Unlock()
		c.conn.Close()
		h.log.Debug().Str("client", c.id).Msg("client gone")
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	c := h.accept(w, r, h.clients)
	if c == nil {
		return
	}
	h.sendTopology(c)
	go h.drain(c, h.clients)
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	c := h.accept(w, r, h.diagClients)
	if c == nil {
		return
	}
	go h.drain(c, h.diagClients)
}

// control is a message on the control channel. Absent fields are unchanged.
type control struct {
	Brightness   *float64 `json:"brightness"`
	Desaturation *float64 `json:"desaturation"`
	Gamma        *float64 `json:"gamma"`
	Crossfade    *float64 `json:"crossfade"`
	RunTest      *string  `json:"runTest"`
	Program      *string  `json:"program"`
	Seek         *float64 `json:"seek"`
}

// ProgramCommand drives the parameter schedule from the control channel.
type ProgramCommand struct {
	Action string   // "pause", "resume", "restart" or empty
	Seek   *float64 // seconds into the schedule
}

func (c ProgramCommand) empty() bool { return c.Action == "" && c.Seek == nil }

func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &client{id: uuid.NewString(), conn: conn}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg control
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		h.applyControl(msg)
		h.sendTopology(c)
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"fps":      h.fps,
		"outputs":  h.outputs,
		"status":   append([]int(nil), h.status...),
		"params":   h.params,
	}
	h.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) applyControl(msg control) {
	h.mu.Lock()
	if msg.Brightness != nil {
		h.params.Brightness = *msg.Brightness
	}
	if msg.Desaturation != nil {
		h.params.Desaturation = *msg.Desaturation
	}
	if msg.Gamma != nil {
		h.params.Gamma = *msg.Gamma
	}
	if msg.Crossfade != nil {
		h.params.Crossfade = *msg.Crossfade
	}
	h.params = h.params.Sanitize()
	if msg.Program != nil {
		switch *msg.Program {
		case "pause", "resume", "restart":
			h.program.Action = *msg.Program
		}
	}
	if msg.Seek != nil {
		v := *msg.Seek
		h.program.Seek = &v
	}
	h.mu.Unlock()

	if msg.RunTest == nil {
		return
	}
	k, err := pattern.ParseKind(*msg.RunTest)
	if err != nil {
		h.PushDiag(diag.Diagnostic{
			Time: time.Now(), Output: -1, Severity: diag.Warn, Code: "TEST.UNKNOWN",
			Summary: "Unknown test name", Evidence: map[string]any{"name": *msg.RunTest},
		})
		return
	}
	h.mu.Lock()
	h.pattern = k
	h.mu.Unlock()
	h.PushDiag(diag.Diagnostic{Time: time.Now(), Output: -1, Severity: diag.Info, Code: "TEST.RUNNING", Summary: "Running test", Detail: string(k)})
}

// Params returns the parameters last set through the control channel.
func (h *Hub) Params() render.Params {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.params
}

// TakePattern returns a requested test pattern once.
func (h *Hub) TakePattern() (pattern.Kind, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	k := h.pattern
	h.pattern = pattern.None
	return k, k != pattern.None
}

// TakeProgram returns the pending schedule command once.
func (h *Hub) TakeProgram() (ProgramCommand, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cmd := h.program
	h.program = ProgramCommand{}
	return cmd, !cmd.empty()
}

// SetStatus records the last update status of an output for /health.
func (h *Hub) SetStatus(index, status int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index >= 0 && index < len(h.status) {
		h.status[index] = status
	}
}

func (h *Hub) sendTopology(c *client) {
	h.mu.RLock()
	top := map[string]any{
		"client":  c.id,
		"outputs": h.outputs,
		"params":  h.params,
	}
	h.mu.RUnlock()
	b, _ := json.Marshal(top)
	_ = c.send(b)
}

type outputFrame struct {
	Index int    `json:"index"`
	RGB   []byte `json:"rgb"`
}

// Publish sends one preview frame holding colors[i] for output i. The
// slices are copied.
func (h *Hub) Publish(colors [][]render.ColorRGB) {
	frames := make([]outputFrame, len(colors))
	for i, cs := range colors {
		rgb := make([]byte, 0, 3*len(cs))
		for _, c := range cs {
			rgb = append(rgb, c.R, c.G, c.B)
		}
		frames[i] = outputFrame{Index: i, RGB: rgb}
	}

	h.mu.Lock()
	h.frameID++
	id := h.frameID
	targets := clientList(h.clients)
	h.mu.Unlock()

	b, _ := json.Marshal(struct {
		T       int64         `json:"t"`
		FrameID uint64        `json:"frame_id"`
		Outputs []outputFrame `json:"outputs"`
	}{T: time.Now().UnixNano(), FrameID: id, Outputs: frames})
	for _, c := range targets {
		if err := c.send(b); err != nil {
			h.log.Debug().Err(err).Str("client", c.id).Msg("write frame")
		}
	}
}

func (h *Hub) PushDiag(d diag.Diagnostic) {
	h.mu.RLock()
	targets := clientList(h.diagClients)
	h.mu.RUnlock()
	b, _ := json.Marshal(d)
	for _, c := range targets {
		_ = c.send(b)
	}
}

func clientList(set map[*client]bool) []*client {
	out := make([]*client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
