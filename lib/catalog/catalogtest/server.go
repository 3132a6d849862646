// Package catalogtest provides an in-memory catalog API that speaks the same
// protocol as the real service, including the digest challenge on
// /auth/tokens.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"bookcatalog/lib/catalog"

	auth "github.com/abbot/go-http-auth"
)

const (
	DefaultUsername = "learner"
	DefaultPassword = "p@ssword"
	DefaultToken    = "stub-token-5f2c"

	Realm = "catalog"
)

type Options struct {
	Username string
	Password string
	Token    string
	// Books are served by GET /api/books, created books are appended.
	Books []catalog.Book
	// ListBody, when set, is returned verbatim by GET /api/books.
	ListBody string
	// CreateStatus, when set, is returned by POST /api/books instead of 201.
	CreateStatus int
}

// DigestAttempt is a single authorization header received by /auth/tokens.
type DigestAttempt struct {
	Username string
	Valid    bool
}

// Created is a single accepted or rejected POST /api/books.
type Created struct {
	Authorization string
	Book          catalog.Book
}

type Server struct {
	*httptest.Server

	opts   Options
	digest *auth.DigestAuth

	mu             sync.Mutex
	books          []catalog.Book
	digestAttempts []DigestAttempt
	tokensIssued   int
	created        []Created
}

func NewServer(t testing.TB, opts Options) *Server {
	if opts.Username == "" {
		opts.Username = DefaultUsername
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.Token == "" {
		opts.Token = DefaultToken
	}

	s := &Server{
		opts:  opts,
		books: append([]catalog.Book(nil), opts.Books...),
	}
	s.digest = auth.NewDigestAuthenticator(Realm, s.secret)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/tokens", s.handleTokens)
	mux.HandleFunc("POST /api/books", s.handleCreate)
	mux.HandleFunc("GET /api/books", s.handleList)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) secret(user, realm string) string {
	if user != s.opts.Username {
		return ""
	}
	return auth.H(user + ":" + realm + ":" + s.opts.Password)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := auth.DigestAuthParams(r.Header.Get("Authorization"))
	if params == nil {
		s.digest.RequireAuth(w, r)
		return
	}

	username, _ := s.digest.CheckAuth(r)
	valid := username != ""
	s.digestAttempts = append(s.digestAttempts, DigestAttempt{
		Username: params["username"],
		Valid:    valid,
	})
	if !valid {
		s.digest.RequireAuth(w, r)
		return
	}

	s.tokensIssued++
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(s.opts.Token))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var book catalog.Book
	err := json.NewDecoder(r.Body).Decode(&book)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	authorization := r.Header.Get("Authorization")
	s.created = append(s.created, Created{
		Authorization: authorization,
		Book:          book,
	})

	if s.opts.CreateStatus != 0 {
		http.Error(w, http.StatusText(s.opts.CreateStatus), s.opts.CreateStatus)
		return
	}
	if authorization != "Bearer "+s.opts.Token {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	s.books = append(s.books, book)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(book)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if s.opts.ListBody != "" {
		w.Write([]byte(s.opts.ListBody))
		return
	}
	books := s.books
	if books == nil {
		books = []catalog.Book{}
	}
	json.NewEncoder(w).Encode(books)
}

// TokensIssued is the number of successful digest exchanges.
func (s *Server) TokensIssued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokensIssued
}

func (s *Server) DigestAttempts() []DigestAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DigestAttempt(nil), s.digestAttempts...)
}

func (s *Server) Created() []Created {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Created(nil), s.created...)
}

func (s *Server) Token() string {
	return s.opts.Token
}
