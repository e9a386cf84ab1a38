package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

func TestMemoryCenterLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	c, err := m.CreateCenter(ctx, model.ReliefCenter{
		Location:  model.Location{Name: "North Depot", Lat: 40.7, Lng: -74.0},
		Resources: []model.Resource{{ID: "food", Name: "Food Packages", Quantity: 500, Unit: "packages"}},
		Capacity:  1000,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Location.ID == "" {
		t.Fatal("create must assign an id")
	}
	if c.Location.Kind != model.KindReliefCenter {
		t.Fatalf("kind = %s", c.Location.Kind)
	}

	got, err := m.GetCenter(ctx, c.Location.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Resources[0].Quantity != 500 {
		t.Fatalf("quantity = %d", got.Resources[0].Quantity)
	}

	upd, err := m.UpdateCenterResources(ctx, c.Location.ID, []model.Resource{
		{ID: "food", Name: "Food Packages", Quantity: 440, Unit: "packages"},
	})
	if err != nil {
		t.Fatalf("update resources: %v", err)
	}
	if upd.Resources[0].Quantity != 440 {
		t.Fatalf("updated quantity = %d", upd.Resources[0].Quantity)
	}

	if _, err := m.GetCenter(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing center err = %v, want ErrNotFound", err)
	}
}

func TestMemoryZoneLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	z, err := m.CreateZone(ctx, model.DisasterZone{
		Location:           model.Location{Name: "East Flood Zone"},
		Severity:           8,
		PopulationAffected: 12000,
		Priority:           5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	zones, err := m.ListZones(ctx)
	if err != nil || len(zones) != 1 {
		t.Fatalf("list = %v, %v", zones, err)
	}

	if err := m.DeleteZone(ctx, z.Location.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.DeleteZone(ctx, z.Location.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMemorySolutionsNewestFirstWithFilter(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, s := range []model.AllocationSolution{
		{ID: "s1", Algorithm: "genetic", TotalCost: 10},
		{ID: "s2", Algorithm: "annealing", TotalCost: 8},
		{ID: "s3", Algorithm: "genetic", TotalCost: 6},
	} {
		if err := m.SaveSolution(ctx, s); err != nil {
			t.Fatalf("save %s: %v", s.ID, err)
		}
	}

	all, err := m.ListSolutions(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "s3" || all[2].ID != "s1" {
		t.Fatalf("order = %v", all)
	}

	ga, err := m.ListSolutions(ctx, "genetic", 0)
	if err != nil {
		t.Fatalf("list genetic: %v", err)
	}
	if len(ga) != 2 || ga[0].ID != "s3" || ga[1].ID != "s1" {
		t.Fatalf("genetic order = %v", ga)
	}

	one, err := m.ListSolutions(ctx, "", 1)
	if err != nil || len(one) != 1 || one[0].ID != "s3" {
		t.Fatalf("limit 1 = %v, %v", one, err)
	}
}
