package remote

import (
	"context"

	"github.com/strafezone/portal/gameserver-service/internal/models"
)

// SpawnOptions carries everything needed to materialize one game server
// instance on a remote host.
type SpawnOptions struct {
	InstanceID     string
	ServerName     string
	Port           int
	AdminSecret    string // doubles as the RCON password
	Token          string // GSLT the server authenticates with
	ServerPassword string
	GameMode       string // competitive, wingman, deathmatch
	Map            string
	AdminSteamIDs  []string
}

// Orchestrator manages the lifecycle of containerized game servers on
// remote hosts. Spawn returns the container handle; the orchestration
// layer resolves the handle back to the running container by naming
// convention. Teardown is idempotent and tolerates already-gone
// containers and directories.
type Orchestrator interface {
	Spawn(ctx context.Context, host *models.Host, opts SpawnOptions) (string, error)
	Teardown(ctx context.Context, host *models.Host, instanceID string) error
	Validate(ctx context.Context, host *models.Host) error
}
