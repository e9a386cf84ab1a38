package api

import (
	"log"
	"os"
	"strings"

	"github.com/Kumar-s75/DisasterOps/internal/config"
	"github.com/Kumar-s75/DisasterOps/internal/routing"
	"github.com/Kumar-s75/DisasterOps/internal/store"
)

// Server wires the persistence layer, the routing engine, and the event
// broker behind the HTTP handlers.
type Server struct {
	Store  store.Store
	Engine *routing.Engine
	Broker EventBroker

	cfg config.Config
}

// NewServer creates a Server. No DATABASE_URL means the in-memory store;
// no REDIS_URL means the in-process broker.
func NewServer(cfg config.Config) (*Server, error) {
	var st store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		st = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		// Run migrations (dev helper)
		if os.Getenv("DB_MIGRATE") != "false" {
			if err := sp.MigrateDir("db/migrations"); err != nil {
				log.Printf("migrations skipped: %v", err)
			}
		}
		st = sp
	}

	var broker EventBroker
	if cfg.RedisURL != "" {
		rb, err := NewRedisBroker(cfg.RedisURL)
		if err != nil {
			log.Printf("redis broker unavailable, using in-memory: %v", err)
			broker = NewBroker()
		} else {
			broker = rb
		}
	} else {
		broker = NewBroker()
	}

	engine := routing.NewEngine(routing.Config{
		CacheTTL:     cfg.Routing.CacheTTL,
		HistoryLimit: cfg.Routing.HistoryLimit,
		Notifier:     brokerNotifier{broker},
	})

	return &Server{Store: st, Engine: engine, Broker: broker, cfg: cfg}, nil
}

// brokerNotifier adapts the broker to the engine's notifier contract.
type brokerNotifier struct {
	b EventBroker
}

func (n brokerNotifier) PublishNetwork(evt routing.Event) { n.b.Publish(evt) }
