// Package api exposes the engine's add/remove/update/step/metrics
// contract over HTTP/JSON. The engine itself is single-threaded; the
// server's mutex serializes every handler so external mutations always
// land between steps.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravlab/internal/body"
	"github.com/san-kum/gravlab/internal/engine"
	"github.com/san-kum/gravlab/internal/scenario"
)

type Server struct {
	mu  sync.Mutex
	eng *engine.Engine
	dt  float64
}

// NewServer wraps eng. dt is the step size used when a step request does
// not carry its own.
func NewServer(eng *engine.Engine, dt float64) *Server {
	return &Server{eng: eng, dt: dt}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/bodies", s.listBodies).Methods(http.MethodGet)
	r.HandleFunc("/bodies", s.addBody).Methods(http.MethodPost)
	r.HandleFunc("/bodies/{id:[0-9]+}", s.getBody).Methods(http.MethodGet)
	r.HandleFunc("/bodies/{id:[0-9]+}", s.updateBody).Methods(http.MethodPut)
	r.HandleFunc("/bodies/{id:[0-9]+}", s.deleteBody).Methods(http.MethodDelete)
	r.HandleFunc("/metrics", s.metrics).Methods(http.MethodGet)
	r.HandleFunc("/step", s.step).Methods(http.MethodPost)
	r.HandleFunc("/pause", s.pause).Methods(http.MethodPost)
	r.HandleFunc("/resume", s.resume).Methods(http.MethodPost)
	r.HandleFunc("/reset", s.reset).Methods(http.MethodPost)
	r.HandleFunc("/scenarios", s.listScenarios).Methods(http.MethodGet)
	r.HandleFunc("/scenarios/{name}", s.loadScenario).Methods(http.MethodPost)
	return r
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}
	return srv.ListenAndServe()
}

type bodyJSON struct {
	ID       uint64       `json:"id"`
	Name     string       `json:"name"`
	Color    string       `json:"color"`
	Mass     float64      `json:"mass"`
	Radius   float64      `json:"radius"`
	Position [2]float64   `json:"position"`
	Velocity [2]float64   `json:"velocity"`
	Trail    [][2]float64 `json:"trail,omitempty"`
}

func toJSON(b *body.Body, withTrail bool) bodyJSON {
	out := bodyJSON{
		ID:       b.ID,
		Name:     b.Name,
		Color:    b.Color,
		Mass:     b.Mass,
		Radius:   b.Radius,
		Position: [2]float64{b.Pos.X, b.Pos.Y},
		Velocity: [2]float64{b.Vel.X, b.Vel.Y},
	}
	if withTrail {
		out.Trail = make([][2]float64, len(b.Trail))
		for i, p := range b.Trail {
			out.Trail[i] = [2]float64{p.X, p.Y}
		}
	}
	return out
}

type createRequest struct {
	Name     string     `json:"name"`
	Color    string     `json:"color"`
	Mass     float64    `json:"mass"`
	Radius   float64    `json:"radius"`
	Position [2]float64 `json:"position"`
	Velocity [2]float64 `json:"velocity"`
}

type updateRequest struct {
	Name     *string     `json:"name"`
	Color    *string     `json:"color"`
	Mass     *float64    `json:"mass"`
	Radius   *float64    `json:"radius"`
	Position *[2]float64 `json:"position"`
	Velocity *[2]float64 `json:"velocity"`
}

type stepRequest struct {
	Dt     float64 `json:"dt"`
	Frames int     `json:"frames"`
}

func (s *Server) listBodies(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	bodies := s.eng.Store().All()
	out := make([]bodyJSON, len(bodies))
	for i, b := range bodies {
		out[i] = toJSON(b, false)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBody(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	s.mu.Lock()
	b, err := s.eng.Store().Get(id)
	var out bodyJSON
	if err == nil {
		out = toJSON(b, true)
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addBody(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	spec := body.Spec{
		Name:   req.Name,
		Color:  req.Color,
		Mass:   req.Mass,
		Radius: req.Radius,
		X:      req.Position[0], Y: req.Position[1],
		VX: req.Velocity[0], VY: req.Velocity[1],
	}
	s.mu.Lock()
	id, err := s.eng.Store().Add(spec)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (s *Server) updateBody(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	patch := body.Patch{
		Name:   req.Name,
		Color:  req.Color,
		Mass:   req.Mass,
		Radius: req.Radius,
	}
	if req.Position != nil {
		patch.Pos = &r2.Vec{X: req.Position[0], Y: req.Position[1]}
	}
	if req.Velocity != nil {
		patch.Vel = &r2.Vec{X: req.Velocity[0], Y: req.Velocity[1]}
	}
	s.mu.Lock()
	err := s.eng.Store().Update(id, patch)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) deleteBody(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	s.mu.Lock()
	err := s.eng.Store().Remove(id)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) metrics(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	m := s.eng.Metrics()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, m)
}

// step advances the engine. Defaults: the server's dt, one frame.
func (s *Server) step(w http.ResponseWriter, r *http.Request) {
	req := stepRequest{Dt: s.dt, Frames: 1}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed body", http.StatusBadRequest)
			return
		}
		if req.Dt == 0 {
			req.Dt = s.dt
		}
		if req.Frames == 0 {
			req.Frames = 1
		}
	}

	s.mu.Lock()
	var err error
	for i := 0; i < req.Frames && err == nil; i++ {
		err = s.eng.Step(req.Dt)
	}
	m := s.eng.Metrics()
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) pause(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.eng.Pause()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (s *Server) resume(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.eng.Resume()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

func (s *Server) reset(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.eng.Reset()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) listScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scenario.Names())
}

// loadScenario resets the engine and populates it from the named preset.
// An optional ?seed= query pins randomized scenarios.
func (s *Server) loadScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	seed, _ := strconv.ParseInt(r.URL.Query().Get("seed"), 10, 64)

	specs, err := scenario.Build(name, seed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.mu.Lock()
	s.eng.Reset()
	err = s.eng.Populate(specs)
	count := s.eng.Store().Len()
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"bodies": count})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes: validation to 400,
// lookups to 404.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, body.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, body.ErrInvalidBody), errors.Is(err, engine.ErrInvalidTimestep):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
