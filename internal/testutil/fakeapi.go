package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"stickylist/internal/service"
)

// Request is one request received by FakeAPI.
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// FakeAPI is an httptest server speaking the Sticky List REST API.
// Accounts, checklists and tasks live in memory.
type FakeAPI struct {
	Server *httptest.Server

	// RequireAuth rejects checklist/task calls without a known bearer token.
	RequireAuth bool

	// Delay is slept before each response.
	Delay time.Duration

	// FailPaths maps "METHOD /path" to a status code to answer with.
	FailPaths map[string]int

	mu         sync.Mutex
	users      map[string][]byte // email -> bcrypt hash
	tokens     map[string]string // token -> email
	checklists []service.Checklist
	tasks      []service.Task
	requests   []Request
	now        time.Time
}

// NewFakeAPI starts a FakeAPI. Close it with t.Cleanup(api.Close).
func NewFakeAPI() *FakeAPI {
	api := &FakeAPI{
		RequireAuth: true,
		FailPaths:   make(map[string]int),
		users:       make(map[string][]byte),
		tokens:      make(map[string]string),
		now:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	r := mux.NewRouter()
	r.Use(api.record)
	r.HandleFunc("/api/auth/login", api.login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/register", api.register).Methods(http.MethodPost)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(api.authenticate)
	authed.HandleFunc("/checklists", api.listChecklists).Methods(http.MethodGet)
	authed.HandleFunc("/checklists", api.createChecklist).Methods(http.MethodPost)
	authed.HandleFunc("/checklists/{id}", api.deleteChecklist).Methods(http.MethodDelete)
	authed.HandleFunc("/tasks/checklist/{id}", api.listTasks).Methods(http.MethodGet)
	authed.HandleFunc("/tasks", api.createTask).Methods(http.MethodPost)
	authed.HandleFunc("/tasks/{id}", api.deleteTask).Methods(http.MethodDelete)

	api.Server = httptest.NewServer(r)
	return api
}

// URL returns the server's base URL.
func (a *FakeAPI) URL() string { return a.Server.URL }

// Close shuts the server down.
func (a *FakeAPI) Close() { a.Server.Close() }

// Requests returns the requests received so far.
func (a *FakeAPI) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.requests...)
}

// AddUser creates an account and returns a valid session token for it.
func (a *FakeAPI) AddUser(email, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	token := uuid.NewString()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[email] = hash
	a.tokens[token] = email
	return token
}

// AddChecklist stores a checklist with a generated id and returns it.
func (a *FakeAPI) AddChecklist(title string) service.Checklist {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := service.Checklist{ID: uuid.NewString(), Title: title, CreatedAt: a.now}
	a.checklists = append(a.checklists, c)
	return c
}

// AddTask stores a task and returns it.
func (a *FakeAPI) AddTask(checklistID, text string, color service.Color) service.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := service.Task{ID: uuid.NewString(), Text: text, Color: color, Checklist: checklistID}
	a.tasks = append(a.tasks, t)
	return t
}

func (a *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if json.NewDecoder(r.Body).Decode(&body) == nil {
				req.Body = body
			}
		}
		a.mu.Lock()
		a.requests = append(a.requests, req)
		delay := a.Delay
		status := a.FailPaths[r.Method+" "+r.URL.Path]
		a.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, withBody(r, req.Body))
	})
}

func (a *FakeAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.RequireAuth {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.mu.Lock()
		_, ok := a.tokens[token]
		a.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	a.mu.Lock()
	hash, ok := a.users[email]
	a.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	token := uuid.NewString()
	a.mu.Lock()
	a.tokens[token] = email
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (a *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if email == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email and password are required"})
		return
	}

	a.mu.Lock()
	_, exists := a.users[email]
	a.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	a.mu.Lock()
	a.users[email] = hash
	a.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (a *FakeAPI) listChecklists(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	out := append([]service.Checklist{}, a.checklists...)
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"checklists": out})
}

func (a *FakeAPI) createChecklist(w http.ResponseWriter, r *http.Request) {
	title, _ := bodyOf(r)["title"].(string)
	if strings.TrimSpace(title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Title is required"})
		return
	}
	a.mu.Lock()
	c := service.Checklist{ID: uuid.NewString(), Title: title, CreatedAt: a.now}
	a.checklists = append([]service.Checklist{c}, a.checklists...)
	a.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"checklist": c})
}

func (a *FakeAPI) deleteChecklist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, c := range a.checklists {
		if c.ID == id {
			a.checklists = append(a.checklists[:i:i], a.checklists[i+1:]...)
			kept := a.tasks[:0:0]
			for _, t := range a.tasks {
				if t.Checklist != id {
					kept = append(kept, t)
				}
			}
			a.tasks = kept
			writeJSON(w, http.StatusOK, map[string]string{"message": "Checklist deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Checklist not found"})
}

func (a *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a.mu.Lock()
	out := []service.Task{}
	for _, t := range a.tasks {
		if t.Checklist == id {
			out = append(out, t)
		}
	}
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"tasks": out})
}

func (a *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)
	text, _ := body["title"].(string)
	checklist, _ := body["checklist"].(string)
	color, _ := body["color"].(string)
	if strings.TrimSpace(text) == "" || checklist == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Title and checklist are required"})
		return
	}
	a.mu.Lock()
	t := service.Task{ID: uuid.NewString(), Text: text, Color: service.Color(color), Checklist: checklist}
	a.tasks = append([]service.Task{t}, a.tasks...)
	a.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"task": t})
}

func (a *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, t := range a.tasks {
		if t.ID == id {
			a.tasks = append(a.tasks[:i:i], a.tasks[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

type bodyKey struct{}

func withBody(r *http.Request, body map[string]any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), bodyKey{}, body))
}

func bodyOf(r *http.Request) map[string]any {
	if body, ok := r.Context().Value(bodyKey{}).(map[string]any); ok && body != nil {
		return body
	}
	return map[string]any{}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
