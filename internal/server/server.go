package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nick-dorsch/things2do/embed/web_assets"
	"github.com/nick-dorsch/things2do/internal/board"
	"github.com/nick-dorsch/things2do/pkg/models"
)

type Server struct {
	board  *board.Board
	server *http.Server
}

// QuadrantGroup is one quadrant and its tasks in priority order.
type QuadrantGroup struct {
	Quadrant models.Quadrant  `json:"quadrant"`
	Tasks    []board.TaskView `json:"tasks"`
}

func NewServer(b *board.Board) *Server {
	return &Server{board: b}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/tasks", s.handleTasks)
	mux.HandleFunc("GET /api/quadrants", s.handleQuadrants)

	mux.Handle("GET /", http.FileServer(http.FS(web_assets.Assets)))

	return mux
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.board.Views(true), nil)
}

func (s *Server) handleQuadrants(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.groups(), nil)
}

// groups always returns all four quadrants, empty ones included.
func (s *Server) groups() []QuadrantGroup {
	groups := make([]QuadrantGroup, len(models.Quadrants))
	index := make(map[models.Quadrant]int, len(models.Quadrants))
	for i, q := range models.Quadrants {
		groups[i] = QuadrantGroup{Quadrant: q, Tasks: []board.TaskView{}}
		index[q] = i
	}
	for _, v := range s.board.Views(true) {
		i := index[v.Quadrant]
		groups[i].Tasks = append(groups[i].Tasks, v)
	}
	return groups
}

func (s *Server) respond(w http.ResponseWriter, data any, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
