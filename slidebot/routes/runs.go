package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"slidebot/slidebot/config"
	"slidebot/slidebot/controllers"
	"slidebot/slidebot/middlewares"

	"github.com/go-chi/chi/v5"
)

const maxRunsLimit = 500

func RunsRoutes(ctrl *controllers.RunsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))
		// GET /runs?limit=N : most recent pipeline runs
		gr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			limit := 0
			if raw := r.URL.Query().Get("limit"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n < 1 {
					http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
					return
				}
				limit = min(n, maxRunsLimit)
			}
			runs, err := ctrl.ListRuns(r.Context(), limit)
			if errors.Is(err, controllers.ErrHistoryDisabled) {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(runs)
		})
	})
	return r
}
