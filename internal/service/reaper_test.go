package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strafezone/portal/gameserver-service/internal/models"
)

func TestSweepReapsOnlyExpired(t *testing.T) {
	hosts := &memHostStore{hosts: []*models.Host{testHost("h1", "alpha", 30000, 30010, 5)}}
	instances := newMemInstanceStore()

	expired := activeInstance("dead", "h1", "c1", "owner1", 30000)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	instances.instances["dead"] = expired
	instances.instances["live"] = activeInstance("live", "h1", "c2", "owner2", 30001)

	orch := &fakeOrchestrator{}
	reaper := NewReaper(hosts, instances, nopAudit{}, orch)

	reaped, err := reaper.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if reaped != 1 {
		t.Errorf("reaped %d, want 1", reaped)
	}

	if _, ok := instances.instances["dead"]; ok {
		t.Error("expired instance still present")
	}
	if _, ok := instances.instances["live"]; !ok {
		t.Error("active instance was reaped")
	}
	if len(orch.teardowns) != 1 || orch.teardowns[0] != "dead" {
		t.Errorf("teardown calls %v, want [dead]", orch.teardowns)
	}
}

func TestSweepToleratesTeardownFailure(t *testing.T) {
	hosts := &memHostStore{hosts: []*models.Host{testHost("h1", "alpha", 30000, 30010, 5)}}
	instances := newMemInstanceStore()

	expired := activeInstance("dead", "h1", "c1", "owner1", 30000)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	instances.instances["dead"] = expired

	orch := &fakeOrchestrator{teardownErr: errors.New("container already gone")}
	reaper := NewReaper(hosts, instances, nopAudit{}, orch)

	reaped, err := reaper.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if reaped != 1 {
		t.Errorf("reaped %d, want 1 despite teardown failure", reaped)
	}
	if _, ok := instances.instances["dead"]; ok {
		t.Error("record not reclaimed after teardown failure")
	}
}

func TestSweepToleratesMissingHost(t *testing.T) {
	instances := newMemInstanceStore()

	expired := activeInstance("dead", "gone-host", "c1", "owner1", 30000)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	instances.instances["dead"] = expired

	orch := &fakeOrchestrator{}
	reaper := NewReaper(&memHostStore{}, instances, nopAudit{}, orch)

	reaped, err := reaper.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if reaped != 1 {
		t.Errorf("reaped %d, want 1", reaped)
	}
	if len(orch.teardowns) != 0 {
		t.Errorf("teardown attempted without a host: %v", orch.teardowns)
	}
}

func TestSweepIdempotentOnRerun(t *testing.T) {
	hosts := &memHostStore{hosts: []*models.Host{testHost("h1", "alpha", 30000, 30010, 5)}}
	instances := newMemInstanceStore()

	expired := activeInstance("dead", "h1", "c1", "owner1", 30000)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	instances.instances["dead"] = expired

	reaper := NewReaper(hosts, instances, nopAudit{}, &fakeOrchestrator{})

	if _, err := reaper.SweepExpired(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	reaped, err := reaper.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if reaped != 0 {
		t.Errorf("second sweep reaped %d, want 0", reaped)
	}
}
