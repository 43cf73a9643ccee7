package routes

import (
	"net/http"

	"slidebot/slidebot/config"
	"slidebot/slidebot/controllers"
	"slidebot/slidebot/middlewares"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

func EventsRoutes(ctrl *controllers.EventsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))
		// GET /events/ws : live pipeline transitions
		gr.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
			if err != nil {
				return
			}
			defer conn.CloseNow()
			ctrl.Stream(r.Context(), conn)
		})
	})
	return r
}
