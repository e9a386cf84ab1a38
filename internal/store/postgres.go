package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

// Postgres persists centers, zones, and optimizer runs. Nested documents
// (resource lists, allocation maps) are stored as jsonb.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) CreateCenter(ctx context.Context, c model.ReliefCenter) (model.ReliefCenter, error) {
	if c.Location.ID == "" {
		c.Location.ID = uuid.NewString()
	}
	c.Location.Kind = model.KindReliefCenter
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO relief_centers (id, name, lat, lng, capacity, resources)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET name=$2, lat=$3, lng=$4, capacity=$5, resources=$6`,
		c.Location.ID, c.Location.Name, c.Location.Lat, c.Location.Lng, c.Capacity, toJSON(c.Resources))
	if err != nil { return model.ReliefCenter{}, err }
	return c, nil
}

func (p *Postgres) GetCenter(ctx context.Context, id string) (model.ReliefCenter, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, name, lat, lng, capacity, resources FROM relief_centers WHERE id=$1`, id)
	return scanCenter(row)
}

func (p *Postgres) ListCenters(ctx context.Context) ([]model.ReliefCenter, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, lat, lng, capacity, resources FROM relief_centers ORDER BY id`)
	if err != nil { return nil, err }
	defer rows.Close()
	var out []model.ReliefCenter
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil { return nil, err }
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateCenterResources(ctx context.Context, id string, resources []model.Resource) (model.ReliefCenter, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE relief_centers SET resources=$2 WHERE id=$1`, id, toJSON(resources))
	if err != nil { return model.ReliefCenter{}, err }
	if n, _ := res.RowsAffected(); n == 0 { return model.ReliefCenter{}, ErrNotFound }
	return p.GetCenter(ctx, id)
}

func (p *Postgres) CreateZone(ctx context.Context, z model.DisasterZone) (model.DisasterZone, error) {
	if z.Location.ID == "" {
		z.Location.ID = uuid.NewString()
	}
	z.Location.Kind = model.KindDisasterZone
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO disaster_zones (id, name, lat, lng, severity, population, priority, needs)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET name=$2, lat=$3, lng=$4, severity=$5, population=$6, priority=$7, needs=$8`,
		z.Location.ID, z.Location.Name, z.Location.Lat, z.Location.Lng,
		z.Severity, z.PopulationAffected, z.Priority, toJSON(z.ResourcesNeeded))
	if err != nil { return model.DisasterZone{}, err }
	return z, nil
}

func (p *Postgres) GetZone(ctx context.Context, id string) (model.DisasterZone, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, name, lat, lng, severity, population, priority, needs FROM disaster_zones WHERE id=$1`, id)
	return scanZone(row)
}

func (p *Postgres) ListZones(ctx context.Context) ([]model.DisasterZone, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, lat, lng, severity, population, priority, needs FROM disaster_zones ORDER BY id`)
	if err != nil { return nil, err }
	defer rows.Close()
	var out []model.DisasterZone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil { return nil, err }
		out = append(out, z)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteZone(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM disaster_zones WHERE id=$1`, id)
	if err != nil { return err }
	if n, _ := res.RowsAffected(); n == 0 { return ErrNotFound }
	return nil
}

func (p *Postgres) SaveSolution(ctx context.Context, s model.AllocationSolution) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO allocation_solutions (id, algorithm, total_cost, coverage_score, time_efficiency, allocations, routes, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		 ON CONFLICT (id) DO NOTHING`,
		s.ID, s.Algorithm, s.TotalCost, s.CoverageScore, s.TimeEfficiency, toJSON(s.Allocations), toJSON(s.Routes))
	return err
}

func (p *Postgres) GetSolution(ctx context.Context, id string) (model.AllocationSolution, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, algorithm, total_cost, coverage_score, time_efficiency, allocations, routes
		 FROM allocation_solutions WHERE id=$1`, id)
	return scanSolution(row)
}

func (p *Postgres) ListSolutions(ctx context.Context, algorithm string, limit int) ([]model.AllocationSolution, error) {
	if limit <= 0 { limit = 50 }
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, algorithm, total_cost, coverage_score, time_efficiency, allocations, routes
		 FROM allocation_solutions WHERE ($1 = '' OR algorithm = $1)
		 ORDER BY created_at DESC LIMIT $2`, algorithm, limit)
	if err != nil { return nil, err }
	defer rows.Close()
	var out []model.AllocationSolution
	for rows.Next() {
		s, err := scanSolution(rows)
		if err != nil { return nil, err }
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error { return p.db.Close() }

// MigrateDir executes every .sql file in dir in lexical order. Dev helper;
// production schemas are managed externally.
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil { return err }
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil { return err }
		if _, err := p.db.Exec(string(b)); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCenter(r rowScanner) (model.ReliefCenter, error) {
	var c model.ReliefCenter
	var resources []byte
	err := r.Scan(&c.Location.ID, &c.Location.Name, &c.Location.Lat, &c.Location.Lng, &c.Capacity, &resources)
	if errors.Is(err, sql.ErrNoRows) { return model.ReliefCenter{}, ErrNotFound }
	if err != nil { return model.ReliefCenter{}, err }
	c.Location.Kind = model.KindReliefCenter
	if err := json.Unmarshal(resources, &c.Resources); err != nil {
		return model.ReliefCenter{}, err
	}
	return c, nil
}

func scanZone(r rowScanner) (model.DisasterZone, error) {
	var z model.DisasterZone
	var needs []byte
	err := r.Scan(&z.Location.ID, &z.Location.Name, &z.Location.Lat, &z.Location.Lng,
		&z.Severity, &z.PopulationAffected, &z.Priority, &needs)
	if errors.Is(err, sql.ErrNoRows) { return model.DisasterZone{}, ErrNotFound }
	if err != nil { return model.DisasterZone{}, err }
	z.Location.Kind = model.KindDisasterZone
	if err := json.Unmarshal(needs, &z.ResourcesNeeded); err != nil {
		return model.DisasterZone{}, err
	}
	return z, nil
}

func scanSolution(r rowScanner) (model.AllocationSolution, error) {
	var s model.AllocationSolution
	var allocations, routes []byte
	err := r.Scan(&s.ID, &s.Algorithm, &s.TotalCost, &s.CoverageScore, &s.TimeEfficiency, &allocations, &routes)
	if errors.Is(err, sql.ErrNoRows) { return model.AllocationSolution{}, ErrNotFound }
	if err != nil { return model.AllocationSolution{}, err }
	if err := json.Unmarshal(allocations, &s.Allocations); err != nil {
		return model.AllocationSolution{}, err
	}
	if err := json.Unmarshal(routes, &s.Routes); err != nil {
		return model.AllocationSolution{}, err
	}
	return s, nil
}

func toJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil { return []byte("null") }
	return b
}
