package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strafezone/portal/gameserver-service/internal/models"
	"github.com/strafezone/portal/gameserver-service/internal/query"
)

func probeTarget(created time.Time, status string) (*models.Instance, *models.Host) {
	inst := &models.Instance{
		ID:           "i1",
		HostID:       "h1",
		CredentialID: "c1",
		Port:         30000,
		Status:       status,
		OwnerSteamID: "owner1",
		CreatedAt:    created,
		ExpiresAt:    created.Add(2 * time.Hour),
	}
	return inst, testHost("h1", "alpha", 30000, 30010, 5)
}

func TestProbeInitializingWithinGrace(t *testing.T) {
	instances := newMemInstanceStore()
	prober := NewStatusProber(&fakeQuerier{err: errors.New("timeout")}, instances)

	inst, host := probeTarget(time.Now().Add(-30*time.Second), models.StatusInitializing)

	live := prober.Probe(context.Background(), inst, host)
	if live.Status != models.StatusInitializing {
		t.Errorf("got status %s, want initializing inside the boot grace period", live.Status)
	}
}

func TestProbeOfflineAfterGrace(t *testing.T) {
	instances := newMemInstanceStore()
	prober := NewStatusProber(&fakeQuerier{err: errors.New("timeout")}, instances)

	inst, host := probeTarget(time.Now().Add(-2*time.Minute), models.StatusInitializing)

	live := prober.Probe(context.Background(), inst, host)
	if live.Status != models.StatusOffline {
		t.Errorf("got status %s, want offline after the grace period", live.Status)
	}
}

func TestProbeGraceBoundary(t *testing.T) {
	instances := newMemInstanceStore()
	prober := NewStatusProber(&fakeQuerier{err: errors.New("timeout")}, instances)

	// Pin the clock so the boundary is exact
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	prober.now = func() time.Time { return created.Add(initializingGrace) }

	inst, host := probeTarget(created, models.StatusInitializing)

	live := prober.Probe(context.Background(), inst, host)
	if live.Status != models.StatusOffline {
		t.Errorf("got status %s, want offline exactly at the grace boundary", live.Status)
	}
}

func TestProbeOnlineTransitionPersists(t *testing.T) {
	instances := newMemInstanceStore()
	inst, host := probeTarget(time.Now().Add(-90*time.Second), models.StatusInitializing)
	instances.instances[inst.ID] = inst

	querier := &fakeQuerier{result: &query.Result{
		Name:        "strafezone #ab12cd34",
		Map:         "de_mirage",
		PlayerCount: 7,
		MaxPlayers:  12,
		Players:     []string{"s1mple"},
	}}
	prober := NewStatusProber(querier, instances)

	live := prober.Probe(context.Background(), inst, host)
	if live.Status != models.StatusOnline {
		t.Fatalf("got status %s, want online", live.Status)
	}
	if live.PlayerCount != 7 || live.MaxPlayers != 12 || live.Map != "de_mirage" {
		t.Errorf("live status fields not populated: %+v", live)
	}

	if len(instances.updates) != 1 || instances.updates[0] != "i1:online" {
		t.Errorf("status updates %v, want [i1:online]", instances.updates)
	}
	if inst.Status != models.StatusOnline {
		t.Errorf("cached status %s, want online", inst.Status)
	}
}

func TestProbeOnlineNoRedundantUpdate(t *testing.T) {
	instances := newMemInstanceStore()
	inst, host := probeTarget(time.Now().Add(-time.Hour), models.StatusOnline)
	instances.instances[inst.ID] = inst

	prober := NewStatusProber(&fakeQuerier{result: &query.Result{MaxPlayers: 12}}, instances)

	prober.Probe(context.Background(), inst, host)
	if len(instances.updates) != 0 {
		t.Errorf("already-online instance was updated: %v", instances.updates)
	}
}
