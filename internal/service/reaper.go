package service

import (
	"context"
	"log"

	"github.com/strafezone/portal/gameserver-service/internal/remote"
)

// Reaper physically reclaims instances whose lease expired without an
// explicit close. Expired rows are invisible to every active-instance
// query, but their containers keep running until this sweep runs.
type Reaper struct {
	hosts        HostStore
	instances    InstanceStore
	logs         AuditLog
	orchestrator remote.Orchestrator
}

func NewReaper(hosts HostStore, instances InstanceStore, logs AuditLog, orchestrator remote.Orchestrator) *Reaper {
	return &Reaper{
		hosts:        hosts,
		instances:    instances,
		logs:         logs,
		orchestrator: orchestrator,
	}
}

// SweepExpired tears down every expired-but-present instance and deletes
// its record. Remote failures are logged and never block the registry
// delete; the teardown path tolerates already-gone containers, so a
// partially failed sweep is safe to re-run.
func (r *Reaper) SweepExpired(ctx context.Context) (int, error) {
	expired, err := r.instances.ListExpired(ctx)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, inst := range expired {
		host, err := r.hosts.GetByID(ctx, inst.HostID)
		if err != nil {
			log.Printf("[Reaper] Host %s gone for expired instance %s, skipping remote teardown", inst.HostID, inst.ID)
		} else if err := r.orchestrator.Teardown(ctx, host, inst.ID); err != nil {
			log.Printf("[Reaper] Teardown of %s on %s failed (continuing): %v", inst.ID, host.Name, err)
		}

		if err := r.instances.Delete(ctx, inst.ID); err != nil {
			log.Printf("[Reaper] Failed to delete expired instance %s: %v", inst.ID, err)
			continue
		}

		r.logs.LogAction(ctx, inst.ID, "reaped", "deleted", "lease expired")
		reaped++
	}

	if reaped > 0 {
		log.Printf("[Reaper] Reclaimed %d expired instance(s)", reaped)
	}

	return reaped, nil
}
