package remote

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/strafezone/portal/gameserver-service/internal/config"
	"github.com/strafezone/portal/gameserver-service/internal/models"
)

const (
	composeFile      = "docker-compose.yml"
	serverConfigFile = "server.cfg"
	adminListFile    = "admins.json"

	// Seconds between map load and the mode-switch exec; gives the
	// engine time to settle before the cfg kicks in.
	modeSwitchDelay = 15
)

// composeManifest renders the per-instance compose file. TCP and UDP are
// mapped on the same port number; the container joins the shared external
// game network and mounts the shared game-install volume.
func composeManifest(cfg config.ProvisionConfig, opts SpawnOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "services:\n")
	fmt.Fprintf(&b, "  cs2:\n")
	fmt.Fprintf(&b, "    image: %s\n", cfg.Image)
	fmt.Fprintf(&b, "    container_name: %s\n", containerName(opts.InstanceID))
	fmt.Fprintf(&b, "    environment:\n")
	fmt.Fprintf(&b, "      SRCDS_TOKEN: %q\n", opts.Token)
	fmt.Fprintf(&b, "      CS2_SERVERNAME: %q\n", opts.ServerName)
	fmt.Fprintf(&b, "      CS2_PORT: %q\n", fmt.Sprintf("%d", opts.Port))
	fmt.Fprintf(&b, "      CS2_RCONPW: %q\n", opts.AdminSecret)
	if opts.ServerPassword != "" {
		fmt.Fprintf(&b, "      CS2_PW: %q\n", opts.ServerPassword)
	}
	fmt.Fprintf(&b, "      CS2_MAXPLAYERS: %q\n", fmt.Sprintf("%d", cfg.MaxPlayers))
	fmt.Fprintf(&b, "      TICKRATE: %q\n", fmt.Sprintf("%d", cfg.TickRate))
	if opts.GameMode != "" {
		fmt.Fprintf(&b, "      CS2_GAMEALIAS: %q\n", opts.GameMode)
	}
	if opts.Map != "" {
		fmt.Fprintf(&b, "      CS2_STARTMAP: %q\n", opts.Map)
	}
	fmt.Fprintf(&b, "      CS2_ADDITIONAL_ARGS: \"+exec strafezone.cfg\"\n")
	fmt.Fprintf(&b, "    ports:\n")
	fmt.Fprintf(&b, "      - \"%d:%d/tcp\"\n", opts.Port, opts.Port)
	fmt.Fprintf(&b, "      - \"%d:%d/udp\"\n", opts.Port, opts.Port)
	fmt.Fprintf(&b, "    volumes:\n")
	fmt.Fprintf(&b, "      - %s:/home/steam/cs2-dedicated\n", cfg.DataVolume)
	fmt.Fprintf(&b, "      - ./%s:/home/steam/cs2-dedicated/game/csgo/cfg/strafezone.cfg\n", serverConfigFile)
	fmt.Fprintf(&b, "      - ./%s:/home/steam/cs2-dedicated/game/csgo/addons/counterstrikesharp/configs/admins.json\n", adminListFile)
	fmt.Fprintf(&b, "    networks:\n")
	fmt.Fprintf(&b, "      - %s\n", cfg.Network)
	fmt.Fprintf(&b, "networks:\n")
	fmt.Fprintf(&b, "  %s:\n", cfg.Network)
	fmt.Fprintf(&b, "    external: true\n")
	fmt.Fprintf(&b, "volumes:\n")
	fmt.Fprintf(&b, "  %s:\n", cfg.DataVolume)
	fmt.Fprintf(&b, "    external: true\n")

	return b.String()
}

// serverConfig renders the startup cfg fragment. The mode switch runs
// after a fixed delay so a server never sticks in the warmup defaults.
func serverConfig(opts SpawnOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "// generated for instance %s\n", opts.InstanceID)
	fmt.Fprintf(&b, "hostname %q\n", opts.ServerName)
	fmt.Fprintf(&b, "rcon_password %q\n", opts.AdminSecret)
	if opts.ServerPassword != "" {
		fmt.Fprintf(&b, "sv_password %q\n", opts.ServerPassword)
	}
	fmt.Fprintf(&b, "sv_hibernate_when_empty 0\n")

	// The alias sits inside the quoted command string, so only known
	// aliases are ever rendered; anything else falls back to the default.
	mode := opts.GameMode
	if !models.ValidGameMode(mode) {
		mode = "competitive"
	}
	fmt.Fprintf(&b, "sz_schedule %d \"game_alias %s; mp_restartgame 1\"\n", modeSwitchDelay, mode)

	return b.String()
}

// adminList renders the admin allowlist: each permitted SteamID gets a
// synthetic admin-slot label.
func adminList(steamIDs []string) string {
	admins := make(map[string]adminEntry, len(steamIDs))
	for i, steamID := range steamIDs {
		admins[fmt.Sprintf("admin_%d", i+1)] = adminEntry{
			Identity: steamID,
			Flags:    []string{"@css/generic", "@css/kick", "@css/changemap"},
		}
	}

	out, err := json.MarshalIndent(admins, "", "  ")
	if err != nil {
		// map[string]adminEntry cannot fail to marshal
		return "{}"
	}
	return string(out) + "\n"
}

type adminEntry struct {
	Identity string   `json:"identity"`
	Flags    []string `json:"flags"`
}

func containerName(instanceID string) string {
	return "cs2-" + instanceID
}
