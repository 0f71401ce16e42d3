package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strafezone/portal/gameserver-service/internal/models"
)

func testHost(id, name string, rangeStart, rangeEnd, maxInstances int) *models.Host {
	return &models.Host{
		ID:             id,
		Name:           name,
		Address:        "198.51.100.10",
		SSHPort:        22,
		SSHUser:        "root",
		SSHPrivateKey:  "key",
		PortRangeStart: rangeStart,
		PortRangeEnd:   rangeEnd,
		MaxInstances:   maxInstances,
	}
}

func activeInstance(id, hostID, credID, owner string, port int) *models.Instance {
	return &models.Instance{
		ID:           id,
		HostID:       hostID,
		CredentialID: credID,
		Port:         port,
		Status:       models.StatusOnline,
		OwnerSteamID: owner,
		CreatedAt:    time.Now(),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestFindHostAndPortFirstFit(t *testing.T) {
	hosts := &memHostStore{hosts: []*models.Host{testHost("h1", "alpha", 27015, 27020, 10)}}
	instances := newMemInstanceStore()
	instances.instances["i1"] = activeInstance("i1", "h1", "c1", "owner1", 27015)
	instances.instances["i2"] = activeInstance("i2", "h1", "c2", "owner2", 27016)

	alloc := NewAllocator(hosts, &memCredentialStore{}, instances)

	host, port, err := alloc.FindHostAndPort(context.Background())
	if err != nil {
		t.Fatalf("FindHostAndPort: %v", err)
	}
	if host.ID != "h1" || port != 27017 {
		t.Errorf("got host=%s port=%d, want h1:27017", host.ID, port)
	}
}

func TestFindHostAndPortSkipsFullHost(t *testing.T) {
	hosts := &memHostStore{hosts: []*models.Host{
		testHost("h1", "alpha", 30000, 30010, 1),
		testHost("h2", "bravo", 40000, 40010, 2),
	}}
	instances := newMemInstanceStore()
	instances.instances["i1"] = activeInstance("i1", "h1", "c1", "owner1", 30000)

	alloc := NewAllocator(hosts, &memCredentialStore{}, instances)

	host, port, err := alloc.FindHostAndPort(context.Background())
	if err != nil {
		t.Fatalf("FindHostAndPort: %v", err)
	}
	if host.ID != "h2" || port != 40000 {
		t.Errorf("got host=%s port=%d, want h2:40000", host.ID, port)
	}
}

func TestFindHostAndPortIgnoresExpired(t *testing.T) {
	hosts := &memHostStore{hosts: []*models.Host{testHost("h1", "alpha", 30000, 30010, 1)}}
	instances := newMemInstanceStore()
	gone := activeInstance("i1", "h1", "c1", "owner1", 30000)
	gone.ExpiresAt = time.Now().Add(-time.Minute)
	instances.instances["i1"] = gone

	alloc := NewAllocator(hosts, &memCredentialStore{}, instances)

	host, port, err := alloc.FindHostAndPort(context.Background())
	if err != nil {
		t.Fatalf("FindHostAndPort: %v", err)
	}
	if host.ID != "h1" || port != 30000 {
		t.Errorf("got host=%s port=%d, want h1:30000 (expired row should not count)", host.ID, port)
	}
}

func TestFindHostAndPortExhaustion(t *testing.T) {
	hosts := &memHostStore{hosts: []*models.Host{testHost("h1", "alpha", 30000, 30010, 1)}}
	instances := newMemInstanceStore()
	instances.instances["i1"] = activeInstance("i1", "h1", "c1", "owner1", 30000)

	alloc := NewAllocator(hosts, &memCredentialStore{}, instances)

	if _, _, err := alloc.FindHostAndPort(context.Background()); !errors.Is(err, ErrNoCapacity) {
		t.Errorf("got %v, want ErrNoCapacity", err)
	}
}

func TestFindHostAndPortExhaustedRange(t *testing.T) {
	// Capacity left, but every port in the range is held
	hosts := &memHostStore{hosts: []*models.Host{testHost("h1", "alpha", 30000, 30001, 10)}}
	instances := newMemInstanceStore()
	instances.instances["i1"] = activeInstance("i1", "h1", "c1", "owner1", 30000)
	instances.instances["i2"] = activeInstance("i2", "h1", "c2", "owner2", 30001)

	alloc := NewAllocator(hosts, &memCredentialStore{}, instances)

	if _, _, err := alloc.FindHostAndPort(context.Background()); !errors.Is(err, ErrNoCapacity) {
		t.Errorf("got %v, want ErrNoCapacity", err)
	}
}

func TestFindCredentialSkipsBound(t *testing.T) {
	creds := &memCredentialStore{creds: []*models.Credential{
		{ID: "c1", Name: "gslt-1", Token: "t1", Active: true},
		{ID: "c2", Name: "gslt-2", Token: "t2", Active: true},
	}}
	instances := newMemInstanceStore()
	instances.instances["i1"] = activeInstance("i1", "h1", "c1", "owner1", 30000)

	alloc := NewAllocator(&memHostStore{}, creds, instances)

	cred, err := alloc.FindCredential(context.Background())
	if err != nil {
		t.Fatalf("FindCredential: %v", err)
	}
	if cred.ID != "c2" {
		t.Errorf("got credential %s, want c2", cred.ID)
	}
}

func TestFindCredentialSkipsInactive(t *testing.T) {
	creds := &memCredentialStore{creds: []*models.Credential{
		{ID: "c1", Name: "gslt-1", Token: "t1", Active: false},
		{ID: "c2", Name: "gslt-2", Token: "t2", Active: true},
	}}

	alloc := NewAllocator(&memHostStore{}, creds, newMemInstanceStore())

	cred, err := alloc.FindCredential(context.Background())
	if err != nil {
		t.Fatalf("FindCredential: %v", err)
	}
	if cred.ID != "c2" {
		t.Errorf("got credential %s, want c2", cred.ID)
	}
}

func TestFindCredentialExhaustion(t *testing.T) {
	creds := &memCredentialStore{creds: []*models.Credential{
		{ID: "c1", Name: "gslt-1", Token: "t1", Active: true},
	}}
	instances := newMemInstanceStore()
	instances.instances["i1"] = activeInstance("i1", "h1", "c1", "owner1", 30000)

	alloc := NewAllocator(&memHostStore{}, creds, instances)

	if _, err := alloc.FindCredential(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Errorf("got %v, want ErrNoCredential", err)
	}
}
