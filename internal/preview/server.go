// Package preview serves a live view of the panel over WebSocket, together
// with a small control channel and a health endpoint.
package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledpanel/internal/geometry"
	"github.com/coreman2200/funtimes-ledpanel/internal/loop"
	"github.com/coreman2200/funtimes-ledpanel/internal/panel"
	"github.com/coreman2200/funtimes-ledpanel/internal/selftest"
)

// Controller is what /control drives; *loop.Loop implements it.
type Controller interface {
	SetBrightness(uint8)
	SetText(string)
	SetColor(panel.Color)
	SetFPS(int)
	RunTest(string) error
	Status() loop.Status
}

// Control is one message on /control. Absent fields are left alone.
type Control struct {
	Brightness *int    `json:"brightness,omitempty"`
	Text       *string `json:"text,omitempty"`
	Color      *string `json:"color,omitempty"`
	FPS        *int    `json:"fps,omitempty"`
	RunTest    *string `json:"runTest,omitempty"`
}

type Server struct {
	geo   geometry.Geometry
	inv   []geometry.Point
	table [][]int

	mu          sync.RWMutex
	ctl         Controller
	driver      string
	frameID     uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	// gorilla connections allow one writer at a time.
	wmu sync.Mutex
	up  websocket.Upgrader
}

// NewServer previews a panel of geometry g wired as m.
func NewServer(g geometry.Geometry, m geometry.Mapper) (*Server, error) {
	inv, err := geometry.Inverse(m, g)
	if err != nil {
		return nil, err
	}
	return &Server{
		geo:         g,
		inv:         inv,
		table:       geometry.Table(m, g),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		up:          websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}, nil
}

// Attach sets the controller behind /control and /health.
func (s *Server) Attach(ctl Controller) {
	s.mu.Lock()
	s.ctl = ctl
	s.mu.Unlock()
}

// Register adds the preview routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.sendTopology(conn)
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	go s.drain(conn, s.clients)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()
	go s.drain(conn, s.diagClients)
}

// drain discards client messages until the connection drops.
func (s *Server) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		s.mu.Lock()
		delete(set, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		if err := json.Unmarshal(data, &msg); err != nil {
			s.PushDiag(Diagnostic{Severity: Warn, Code: "CONTROL.BAD_JSON", Summary: "Unreadable control message", Detail: err.Error()})
			continue
		}
		s.apply(msg)
		s.send(conn, s.health())
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.health())
}

func (s *Server) health() map[string]any {
	s.mu.RLock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"count":    s.geo.Count(),
		"driver":   s.driver,
	}
	ctl := s.ctl
	s.mu.RUnlock()
	if ctl != nil {
		st := ctl.Status()
		resp["fps"] = st.FPS
		resp["brightness"] = st.Brightness
		resp["text"] = st.Text
		resp["color"] = st.Color
		resp["test"] = st.Test
	}
	return resp
}

func (s *Server) apply(msg Control) {
	s.mu.RLock()
	ctl := s.ctl
	s.mu.RUnlock()
	if ctl == nil {
		return
	}
	if msg.Brightness != nil {
		ctl.SetBrightness(uint8(min(max(*msg.Brightness, 0), 255)))
	}
	if msg.Text != nil {
		ctl.SetText(*msg.Text)
	}
	if msg.Color != nil {
		c, err := panel.ParseColor(*msg.Color)
		if err != nil {
			s.PushDiag(Diagnostic{Severity: Warn, Code: "CONTROL.BAD_COLOR", Summary: "Color not understood", Detail: err.Error()})
		} else {
			ctl.SetColor(c)
		}
	}
	if msg.FPS != nil {
		ctl.SetFPS(*msg.FPS)
	}
	if msg.RunTest != nil {
		name := *msg.RunTest
		if err := ctl.RunTest(name); err != nil {
			s.PushDiag(Diagnostic{
				Severity: Warn, Code: "TEST.UNKNOWN", Summary: "Unknown test name",
				Evidence: map[string]any{"name": name, "known": selftest.Kinds},
			})
			return
		}
		s.PushDiag(Diagnostic{Severity: Info, Code: "TEST.RUNNING", Summary: "Running test", Detail: name})
	}
}

// TestDone reports a finished self-test to /diag clients.
func (s *Server) TestDone(k selftest.Kind) {
	s.PushDiag(Diagnostic{Severity: Info, Code: "TEST.DONE", Summary: "Test complete", Detail: string(k)})
}

func (s *Server) sendTopology(conn *websocket.Conn) {
	s.mu.RLock()
	drv := s.driver
	s.mu.RUnlock()
	s.send(conn, map[string]any{
		"width":  s.geo.Width(),
		"height": s.geo.Height(),
		"tile":   map[string]int{"w": s.geo.TileW, "h": s.geo.TileH, "x": s.geo.TilesX, "y": s.geo.TilesY},
		"index":  s.table,
		"driver": drv,
	})
}

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	// RGB is row major, top left first.
	RGB []byte `json:"rgb"`
}

// broadcastFrame sends a wire-order GRB frame to /ws clients, reordered to
// row major RGB.
func (s *Server) broadcastFrame(grb []byte) {
	rgb := make([]byte, s.geo.Count()*3)
	w := s.geo.Width()
	for i, pt := range s.inv {
		if i*3+2 >= len(grb) {
			break
		}
		o := (pt.Y*w + pt.X) * 3
		rgb[o+0], rgb[o+1], rgb[o+2] = grb[i*3+1], grb[i*3+0], grb[i*3+2]
	}

	s.mu.Lock()
	s.frameID++
	f := frame{T: time.Now().UnixNano(), FrameID: s.frameID, RGB: rgb}
	conns := keys(s.clients)
	s.mu.Unlock()

	for _, c := range conns {
		s.send(c, f)
	}
}

// PushDiag sends d to every /diag client.
func (s *Server) PushDiag(d Diagnostic) {
	s.mu.RLock()
	conns := keys(s.diagClients)
	s.mu.RUnlock()
	for _, c := range conns {
		s.send(c, d)
	}
}

func (s *Server) send(c *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Debug().Err(err).Msg("marshal preview message")
		return
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Debug().Err(err).Msg("write preview message")
	}
}

func keys(m map[*websocket.Conn]bool) []*websocket.Conn {
	out := make([]*websocket.Conn, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	return out
}
