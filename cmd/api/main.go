package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kumar-s75/DisasterOps/internal/api"
	"github.com/Kumar-s75/DisasterOps/internal/config"
	"github.com/Kumar-s75/DisasterOps/internal/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found (using environment variables)")
	}

	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	metrics.RegisterDefault()

	srv, err := api.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	mux := http.NewServeMux()

	// Relief centers and disaster zones
	mux.HandleFunc("/v1/centers", srv.CentersHandler)
	mux.HandleFunc("/v1/centers/", srv.CenterByIDHandler)
	mux.HandleFunc("/v1/zones", srv.ZonesHandler)
	mux.HandleFunc("/v1/zones/", srv.ZoneByIDHandler)

	// Road network
	mux.HandleFunc("/v1/network/initialize", srv.NetworkInitHandler)
	mux.HandleFunc("/v1/network/segments", srv.SegmentsHandler)
	mux.HandleFunc("/v1/network/condition", srv.ConditionHandler)
	mux.HandleFunc("/v1/network/traffic", srv.TrafficHandler)
	mux.HandleFunc("/v1/network/statistics", srv.NetworkStatsHandler)
	mux.HandleFunc("/v1/network/history", srv.SegmentHistoryHandler)
	mux.HandleFunc("/v1/network/simulate", srv.SimulateHandler)

	// Allocation
	mux.HandleFunc("/v1/optimize", srv.OptimizeHandler)
	mux.HandleFunc("/v1/solutions", srv.SolutionsHandler)
	mux.HandleFunc("/v1/solutions/", srv.SolutionByIDHandler)

	// Routing
	mux.HandleFunc("/v1/routes", srv.RoutesHandler)
	mux.HandleFunc("/v1/routes/alternatives", srv.AlternativesHandler)
	mux.HandleFunc("/v1/routes/", srv.RouteByIDHandler)

	// Prediction
	mux.HandleFunc("/v1/predict/hotspots", srv.HotspotsHandler)

	// Live network events
	mux.HandleFunc("/v1/events/stream", srv.StreamHandler)

	// Health and metrics
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	handler := logMiddleware(api.MetricsMiddleware(srv.RateLimitMiddleware(mux)))

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on :%s", cfg.Port)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, time.Since(start))
	})
}
