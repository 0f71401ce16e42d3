package service

import (
	"context"
	"log"
	"time"

	"github.com/strafezone/portal/gameserver-service/internal/models"
	"github.com/strafezone/portal/gameserver-service/internal/query"
)

const (
	probeTimeout = 5 * time.Second

	// Container and game-process startup is not instantaneous; a probe
	// failure within this window reports initializing, not offline.
	initializingGrace = 60 * time.Second
)

// StatusProber bridges A2S queries and the cached status column.
type StatusProber struct {
	querier   query.Querier
	instances InstanceStore
	now       func() time.Time
}

func NewStatusProber(querier query.Querier, instances InstanceStore) *StatusProber {
	return &StatusProber{
		querier:   querier,
		instances: instances,
		now:       time.Now,
	}
}

// Probe queries the instance's game port. A successful response means
// online and persists the status on a non-online to online transition;
// a failed probe means offline, unless the instance is still inside the
// boot grace period.
func (p *StatusProber) Probe(ctx context.Context, inst *models.Instance, host *models.Host) *models.LiveStatus {
	res, err := p.querier.Query(ctx, host.Address, inst.Port, probeTimeout)
	if err != nil {
		status := models.StatusOffline
		if p.now().Sub(inst.CreatedAt) < initializingGrace {
			status = models.StatusInitializing
		}
		return &models.LiveStatus{Status: status}
	}

	if inst.Status != models.StatusOnline {
		if err := p.instances.UpdateStatus(ctx, inst.ID, models.StatusOnline); err != nil {
			log.Printf("[Prober] Failed to persist online status for %s: %v", inst.ID, err)
		} else {
			inst.Status = models.StatusOnline
		}
	}

	return &models.LiveStatus{
		Status:      models.StatusOnline,
		PlayerCount: res.PlayerCount,
		MaxPlayers:  res.MaxPlayers,
		Map:         res.Map,
		Name:        res.Name,
		Players:     res.Players,
	}
}
