package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alarmd/gpio"
	"alarmd/zones"
)

// Handlers sets up the admin surface: health, Prometheus metrics and a
// live snapshot of every configured zone.
func Handlers(logger *httplog.Logger, zs []zones.Zone, pins gpio.Reader) *chi.Mux {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/zones", getZones(zs, pins).ServeHTTP)
	})

	return r
}

// zoneView is the wire shape of one zone in the snapshot response.
type zoneView struct {
	Name        string `json:"name"`
	Pin         int    `json:"pin"`
	AccessoryID string `json:"accessory_id"`
	Security    bool   `json:"security"`
	Active      *bool  `json:"active,omitempty"`
}

func getZones(zs []zones.Zone, pins gpio.Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		views := make([]zoneView, 0, len(zs))
		for i := range zs {
			z := &zs[i]
			view := zoneView{
				Name:        z.Name,
				Pin:         z.Pin,
				AccessoryID: z.AccessoryID,
				Security:    z.Security(),
			}
			if level, err := pins.Read(z.Pin); err == nil {
				active := level != z.ActiveLow
				view.Active = &active
			}
			views = append(views, view)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(views); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
