package matcher

import (
	"math"
	"testing"

	"github.com/example/ride-ledger/internal/models"
)

func drv(x, y float64, available bool) models.Driver {
	return models.Driver{Location: models.Location{X: x, Y: y}, Available: available}
}

func TestFindNearestPicksClosest(t *testing.T) {
	drivers := []models.Driver{drv(5, 5, true), drv(1, 0, true), drv(3, 3, true)}
	c, ok := FindNearestDriver(drivers, models.Location{})
	if !ok {
		t.Fatal("no match")
	}
	if c.DriverIndex != 1 || c.DistanceKm != 1 {
		t.Fatalf("expected driver 1 at 1km, got %+v", c)
	}
}

func TestFindNearestSkipsUnavailable(t *testing.T) {
	drivers := []models.Driver{drv(0, 0, false), drv(2, 0, true), drv(0.5, 0, false)}
	c, ok := FindNearestDriver(drivers, models.Location{})
	if !ok || c.DriverIndex != 1 {
		t.Fatalf("expected driver 1, got %+v ok=%v", c, ok)
	}
}

func TestFindNearestTieGoesToFirstRegistered(t *testing.T) {
	drivers := []models.Driver{drv(9, 9, true), drv(0, 1, true), drv(1, 0, true), drv(0, -1, true)}
	c, ok := FindNearestDriver(drivers, models.Location{})
	if !ok || c.DriverIndex != 1 {
		t.Fatalf("expected first equidistant driver 1, got %+v", c)
	}
}

func TestFindNearestNone(t *testing.T) {
	for name, drivers := range map[string][]models.Driver{
		"empty":        nil,
		"all assigned": {drv(0, 0, false), drv(1, 1, false)},
	} {
		c, ok := FindNearestDriver(drivers, models.Location{})
		if ok || c.DriverIndex != -1 {
			t.Fatalf("%s: expected none, got %+v", name, c)
		}
	}
}

func TestFindNearestIsSideEffectFree(t *testing.T) {
	drivers := []models.Driver{drv(0, 0, true)}
	FindNearestDriver(drivers, models.Location{X: 1, Y: 1})
	if !drivers[0].Available {
		t.Fatal("matcher changed availability")
	}
}

func TestNearbyRanksStable(t *testing.T) {
	drivers := []models.Driver{drv(3, 0, true), drv(1, 0, true), drv(0, 1, true), drv(0, 0, false), drv(2, 0, true)}
	got := Nearby(drivers, models.Location{}, 3)
	want := []int{1, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].DriverIndex != w {
			t.Fatalf("position %d: expected driver %d, got %d", i, w, got[i].DriverIndex)
		}
	}
	if all := Nearby(drivers, models.Location{}, 0); len(all) != 4 {
		t.Fatalf("expected 4 available drivers without limit, got %d", len(all))
	}
}

func TestFindNearestPicksDriverAtInfiniteDistance(t *testing.T) {
	drivers := []models.Driver{drv(math.MaxFloat64, 0, true)}
	c, ok := FindNearestDriver(drivers, models.Location{X: -math.MaxFloat64})
	if !ok || c.DriverIndex != 0 {
		t.Fatalf("expected the only available driver, got %+v ok=%v", c, ok)
	}
	if !math.IsInf(c.DistanceKm, 1) {
		t.Fatalf("expected +Inf distance, got %f", c.DistanceKm)
	}
}

func TestFindNearestFarDriver(t *testing.T) {
	drivers := []models.Driver{drv(1e200, 0, true), drv(0, 0, false)}
	c, ok := FindNearestDriver(drivers, models.Location{})
	if !ok || c.DriverIndex != 0 || c.DistanceKm != 1e200 {
		t.Fatalf("expected driver 0 at 1e200, got %+v ok=%v", c, ok)
	}
}
