package api

import (
	"MenuHub/internal/config"
	"MenuHub/internal/http-server/handlers/crm"
	"MenuHub/internal/http-server/handlers/email"
	"MenuHub/internal/http-server/handlers/errors"
	"MenuHub/internal/http-server/handlers/feed"
	"MenuHub/internal/http-server/handlers/health"
	"MenuHub/internal/http-server/handlers/key"
	"MenuHub/internal/http-server/handlers/nfce"
	"MenuHub/internal/http-server/handlers/order"
	"MenuHub/internal/http-server/handlers/webhook"
	"MenuHub/internal/http-server/middleware/authenticate"
	"MenuHub/internal/http-server/middleware/logger"
	"MenuHub/internal/http-server/middleware/timeout"
	"MenuHub/internal/lib/sl"
	"MenuHub/internal/ws"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	ws.Authenticator
	webhook.Core
	order.Core
	nfce.Core
	email.Core
	crm.Core
	key.Core
}

// NewRouter builds the routing tree; the websocket route is mounted outside the request timeout.
func NewRouter(log *slog.Logger, handler Handler, hub *ws.Hub) http.Handler {
	started := time.Now()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.New(log))
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/health", health.Check(started, hub))
	router.Get("/api/v1/ws", feed.Connect(log, hub, handler))

	router.Group(func(r chi.Router) {
		r.Use(timeout.Timeout(30))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Post("/webhook", webhook.Receive(log, handler))

		r.Route("/functions/v1", func(fn chi.Router) {
			fn.Post("/criar-pedido-publico", order.CreatePublic(log, handler))
			fn.Post("/send-password-reset", email.PasswordReset(log, handler))
			fn.Post("/send-confirmation-email", email.Confirmation(log, handler))
			fn.With(authenticate.New(log, handler)).Post("/focus-nfe-integration", nfce.Integration(log, handler))
		})

		r.Route("/api/v1", func(v1 chi.Router) {
			v1.Use(authenticate.New(log, handler))

			v1.Route("/chats", func(c chi.Router) {
				c.Get("/", crm.GetChats(log, handler))
				c.Get("/{company_id}/{chat_id}/messages", crm.GetMessages(log, handler))
				c.Post("/{company_id}/{chat_id}/pause", crm.SetPause(log, handler))
				c.Post("/{company_id}/{chat_id}/send", crm.SendMessage(log, handler))
			})
			v1.Route("/key", func(k chi.Router) {
				k.Post("/new", key.Generate(log, handler))
			})
		})
	})

	return router
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) *Server {
	server := &Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:           NewRouter(log, handler, hub),
		ErrorLog:          httpLog,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	err = s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
