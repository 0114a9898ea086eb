package httpapi

import (
	"net/http"
	"os"

	"example.com/fluff/internal/hub"
	"example.com/fluff/internal/notify"
	"example.com/fluff/internal/ws"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Options struct {
	DefaultHandSize int
	StaticDir       string // optional; if empty or missing, no UI is served
	Webhook         *notify.Webhook
}

func SetupRoutes(h *hub.Hub, opts Options, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h, opts.Webhook, opts.DefaultHandSize, log))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))

	if opts.StaticDir != "" {
		if _, err := os.Stat(opts.StaticDir); err == nil {
			r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
		}
	}
	return r
}
