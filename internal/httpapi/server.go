package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"fpndb/internal/config"
	"fpndb/internal/notify"
	"fpndb/internal/store"
)

type Server struct {
	cfg      config.Config
	store    store.Store
	gateway  *notify.Gateway
	log      zerolog.Logger
	mux      *http.ServeMux
	sessions *sessionManager
}

func NewServer(l zerolog.Logger, cfg config.Config, st store.Store, gw *notify.Gateway) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		gateway:  gw,
		log:      l.With().Str("module", "httpapi").Logger(),
		mux:      http.NewServeMux(),
		sessions: newSessionManager(cfg.SecretKey),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = recoverMiddleware(h)
	h = requestIDMiddleware(h)
	h = loggingMiddleware(s.log, h)
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	s.mux.HandleFunc("/{$}", s.handleHome)
	s.mux.HandleFunc("/signup", s.handleSignup)
	s.mux.HandleFunc("/verify", s.handleVerify)
	s.mux.HandleFunc("/submit", s.handleSubmit)
	s.mux.HandleFunc("/browse", s.handleBrowse)
	s.mux.HandleFunc("/record/{id}", s.handleRecord)
	s.mux.HandleFunc("/approve/{id}", s.handleApprove)
	s.mux.HandleFunc("/logout", s.handleLogout)
}
