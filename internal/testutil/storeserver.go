package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// StoredTask is the record kept by StoreServer, in the store's wire form.
type StoredTask struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StoreServer is an in-memory REST task store served over httptest.
type StoreServer struct {
	*httptest.Server

	mu     sync.Mutex
	tasks  []StoredTask
	bodies []map[string]any
	status int
}

// NewStoreServer starts a StoreServer. Close it with Close.
func NewStoreServer() *StoreServer {
	s := &StoreServer{}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.failing)
	r.Get("/api/tasks", s.list)
	r.Post("/api/tasks", s.create)
	r.Put("/api/tasks/{id}", s.update)
	r.Delete("/api/tasks/{id}", s.remove)

	s.Server = httptest.NewServer(r)
	return s
}

// Seed adds a task and returns it.
func (s *StoreServer) Seed(title string, completed bool) StoredTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := StoredTask{ID: uuid.NewString(), Title: title, Completed: completed, CreatedAt: CreatedAt}
	s.tasks = append(s.tasks, t)
	return t
}

// FailWith makes every following request answer with status. Zero restores
// normal behaviour.
func (s *StoreServer) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Tasks returns the stored tasks.
func (s *StoreServer) Tasks() []StoredTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StoredTask, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Bodies returns the decoded JSON bodies of POST and PUT requests.
func (s *StoreServer) Bodies() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.bodies))
	copy(out, s.bodies)
	return out
}

func (s *StoreServer) failing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.status
		s.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *StoreServer) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Tasks())
}

func (s *StoreServer) create(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	title, _ := body["title"].(string)
	if strings.TrimSpace(title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title is required"})
		return
	}
	description, _ := body["description"].(string)

	s.mu.Lock()
	t := StoredTask{ID: uuid.NewString(), Title: title, Description: description, CreatedAt: CreatedAt}
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, t)
}

func (s *StoreServer) update(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
		return
	}
	if v, ok := body["title"].(string); ok {
		s.tasks[i].Title = v
	}
	if v, ok := body["description"].(string); ok {
		s.tasks[i].Description = v
	}
	if v, ok := body["completed"].(bool); ok {
		s.tasks[i].Completed = v
	}
	t := s.tasks[i]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, t)
}

func (s *StoreServer) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

func (s *StoreServer) readBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return nil, false
	}
	s.mu.Lock()
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()
	return body, true
}

// indexOf must be called with s.mu held.
func (s *StoreServer) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
