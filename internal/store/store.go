package store

import (
	"context"
	"errors"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Relief centers
	CreateCenter(ctx context.Context, c model.ReliefCenter) (model.ReliefCenter, error)
	GetCenter(ctx context.Context, id string) (model.ReliefCenter, error)
	ListCenters(ctx context.Context) ([]model.ReliefCenter, error)
	UpdateCenterResources(ctx context.Context, id string, resources []model.Resource) (model.ReliefCenter, error)

	// Disaster zones
	CreateZone(ctx context.Context, z model.DisasterZone) (model.DisasterZone, error)
	GetZone(ctx context.Context, id string) (model.DisasterZone, error)
	ListZones(ctx context.Context) ([]model.DisasterZone, error)
	DeleteZone(ctx context.Context, id string) error

	// Optimizer runs
	SaveSolution(ctx context.Context, s model.AllocationSolution) error
	GetSolution(ctx context.Context, id string) (model.AllocationSolution, error)
	ListSolutions(ctx context.Context, algorithm string, limit int) ([]model.AllocationSolution, error)

	Close() error
}

var ErrNotFound = errors.New("not found")
