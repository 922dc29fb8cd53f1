package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/namatovu-christine/alumni-sync/internal/errs"
	"github.com/namatovu-christine/alumni-sync/internal/model"
	"github.com/namatovu-christine/alumni-sync/internal/service"
)

// Authenticator is the session surface the auth endpoints drive.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, fullName string) error
	SignOut()
}

// registerPortal wires the feature endpoints the portal UI talks to. Each
// group is optional.
func registerPortal(r *mux.Router, deps Deps) {
	if deps.Auth != nil {
		r.HandleFunc("/auth/sign_in", handleSignIn(deps.Auth)).Methods(http.MethodPost)
		r.HandleFunc("/auth/register", handleRegister(deps.Auth)).Methods(http.MethodPost)
		r.HandleFunc("/auth/sign_out", handleSignOut(deps.Auth)).Methods(http.MethodPost)
	}
	if deps.Directory != nil {
		r.HandleFunc("/directory", handleDirectory(deps.Directory)).Methods(http.MethodGet)
		r.HandleFunc("/directory/mentors", handleMentors(deps.Directory)).Methods(http.MethodGet)
		r.HandleFunc("/directory/{id}", handleProfile(deps.Directory)).Methods(http.MethodGet)
	}
	if deps.Jobs != nil {
		r.HandleFunc("/jobs", handleJobs(deps.Jobs)).Methods(http.MethodGet)
		r.HandleFunc("/jobs", handlePostJob(deps.Jobs)).Methods(http.MethodPost)
	}
	if deps.Events != nil {
		r.HandleFunc("/events", handleEvents(deps.Events)).Methods(http.MethodGet)
		r.HandleFunc("/events/{id}", handleEvent(deps.Events)).Methods(http.MethodGet)
	}
	if deps.Chat != nil {
		r.HandleFunc("/chats/{id}/messages", handleHistory(deps.Chat)).Methods(http.MethodGet)
		r.HandleFunc("/chats/{id}/messages", handleSend(deps.Chat)).Methods(http.MethodPost)
		r.HandleFunc("/messages/{id}/read", handleMarkRead(deps.Chat)).Methods(http.MethodPost)
	}
	if deps.Profile != nil {
		r.HandleFunc("/profile", handleUpdateProfile(deps.Profile)).Methods(http.MethodPut)
		r.HandleFunc("/profile/photo", handleUploadPhoto(deps.Profile)).Methods(http.MethodPost)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrNoSession):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, errs.ErrRateLimited):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func handleSignIn(a Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := a.SignIn(r.Context(), req.Email, req.Password); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRegister(a Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := a.Register(r.Context(), req.Email, req.Password, req.FullName); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func handleSignOut(a Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		a.SignOut()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDirectory(d service.DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := d.SearchAlumni(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, users)
	}
}

func handleMentors(d service.DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := d.Mentors(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, users)
	}
}

func handleProfile(d service.DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := d.GetProfile(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, u)
	}
}

func handleJobs(j service.JobBoardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			jobs []model.JobPosting
			err  error
		)
		switch {
		case r.URL.Query().Get("type") != "":
			jobs, err = j.FilterByType(r.Context(), r.URL.Query().Get("type"))
		default:
			jobs, err = j.Search(r.Context(), r.URL.Query().Get("q"))
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, jobs)
	}
}

func handlePostJob(j service.JobBoardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var job model.JobPosting
		if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		posted, err := j.PostJob(r.Context(), job)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, posted)
	}
}

func handleEvents(e service.EventsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			events []model.Event
			err    error
		)
		switch {
		case r.URL.Query().Get("upcoming") == "true":
			events, err = e.Upcoming(r.Context())
		default:
			events, err = e.Search(r.Context(), r.URL.Query().Get("q"))
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, events)
	}
}

func handleEvent(e service.EventsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := e.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, ev)
	}
}

func handleHistory(c service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := c.History(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, msgs)
	}
}

type sendRequest struct {
	Content string `json:"content"`
}

func handleSend(c service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		msg, err := c.Send(r.Context(), mux.Vars(r)["id"], req.Content)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, msg)
	}
}

func handleMarkRead(c service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.MarkRead(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateProfile(p service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user model.User
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		updated, err := p.Update(r.Context(), user)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, updated)
	}
}

func handleUploadPhoto(p service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := p.UploadPhoto(r.Context(), r.Body, r.ContentLength, r.Header.Get("Content-Type"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]string{"url": url})
	}
}
