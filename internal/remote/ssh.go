package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/strafezone/portal/gameserver-service/internal/config"
	"github.com/strafezone/portal/gameserver-service/internal/models"
	"golang.org/x/crypto/ssh"
)

const sshDialTimeout = 10 * time.Second

// SSHOrchestrator provisions game servers over SSH: one connection per
// operation, always closed on every exit path. The remote host only
// needs docker with the compose plugin and a writable base directory.
type SSHOrchestrator struct {
	cfg config.ProvisionConfig
}

func NewSSHOrchestrator(cfg config.ProvisionConfig) *SSHOrchestrator {
	return &SSHOrchestrator{cfg: cfg}
}

// Spawn materializes the instance directory on the host and brings the
// container up detached. The compose manifest, server cfg and admin
// allowlist are written via heredocs in a single remote command. If the
// up command fails after the artifacts were written, the directory is
// best-effort removed so a retry does not trip over stale files.
func (o *SSHOrchestrator) Spawn(ctx context.Context, host *models.Host, opts SpawnOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client, err := o.connect(host)
	if err != nil {
		return "", fmt.Errorf("connect to %s: %w", host.Name, err)
	}
	defer client.Close()

	dir := path.Join(o.cfg.BaseDir, opts.InstanceID)
	script := provisionScript(dir, map[string]string{
		composeFile:      composeManifest(o.cfg, opts),
		serverConfigFile: serverConfig(opts),
		adminListFile:    adminList(opts.AdminSteamIDs),
	})

	if _, _, err := runCommand(client, script); err != nil {
		return "", fmt.Errorf("write instance artifacts: %w", err)
	}

	stdout, stderr, err := runCommand(client, fmt.Sprintf("cd %s && docker compose up -d", dir))
	if err != nil {
		o.removeDir(client, dir)
		return "", fmt.Errorf("compose up: %w", err)
	}
	if spawnFailed(stdout, stderr) {
		o.removeDir(client, dir)
		return "", fmt.Errorf("compose up produced no output: %s", firstLine(stderr))
	}

	return containerName(opts.InstanceID), nil
}

// Teardown stops the container and deletes the instance directory. Both
// steps are attempted regardless of individual failures and tolerate
// already-gone state, so the reaper can re-run it safely.
func (o *SSHOrchestrator) Teardown(ctx context.Context, host *models.Host, instanceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := o.connect(host)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", host.Name, err)
	}
	defer client.Close()

	dir := path.Join(o.cfg.BaseDir, instanceID)

	var downErr, rmErr error
	if _, _, err := runCommand(client, fmt.Sprintf("cd %s && docker compose down --timeout 5", dir)); err != nil {
		downErr = fmt.Errorf("compose down: %w", err)
	}
	if _, _, err := runCommand(client, fmt.Sprintf("rm -rf %s", dir)); err != nil {
		rmErr = fmt.Errorf("remove instance dir: %w", err)
	}

	return errors.Join(downErr, rmErr)
}

// Validate checks that the host's SSH credential works and a shell is
// reachable. Used before persisting or updating a host record.
func (o *SSHOrchestrator) Validate(ctx context.Context, host *models.Host) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := o.connect(host)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", host.Address, err)
	}
	defer client.Close()

	stdout, _, err := runCommand(client, "echo ok")
	if err != nil {
		return fmt.Errorf("exec check: %w", err)
	}
	if strings.TrimSpace(stdout) != "ok" {
		return fmt.Errorf("unexpected shell output: %q", firstLine(stdout))
	}

	return nil
}

func (o *SSHOrchestrator) connect(host *models.Host) (*ssh.Client, error) {
	signer, err := ssh.ParsePrivateKey([]byte(host.SSHPrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	cfg := &ssh.ClientConfig{
		User: host.SSHUser,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sshDialTimeout,
	}

	addr := net.JoinHostPort(host.Address, strconv.Itoa(host.SSHPort))
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return client, nil
}

func (o *SSHOrchestrator) removeDir(client *ssh.Client, dir string) {
	if _, _, err := runCommand(client, fmt.Sprintf("rm -rf %s", dir)); err != nil {
		log.Printf("[SSH] Failed to clean up %s after spawn failure: %v", dir, err)
	}
}

// spawnFailed reports whether a compose up invocation never reached the
// daemon: stderr-only output with an empty stdout (bad manifest, missing
// plugin). Both streams empty counts as success; a quiet up is normal.
func spawnFailed(stdout, stderr string) bool {
	return strings.TrimSpace(stdout) == "" && strings.TrimSpace(stderr) != ""
}

// runCommand executes one command in a fresh session and returns what it
// wrote to stdout and stderr.
func runCommand(client *ssh.Client, cmd string) (string, string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", "", fmt.Errorf("new session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Run(cmd); err != nil {
		return stdout.String(), stderr.String(),
			fmt.Errorf("run %q: %w (stderr: %s)", firstLine(cmd), err, firstLine(stderr.String()))
	}

	return stdout.String(), stderr.String(), nil
}

// provisionScript builds the mkdir + heredoc sequence that writes every
// artifact in one round trip. Quoted heredoc delimiters keep the shell
// from expanding anything inside the files.
func provisionScript(dir string, files map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "mkdir -p %s\n", dir)
	for _, name := range []string{composeFile, serverConfigFile, adminListFile} {
		content, ok := files[name]
		if !ok {
			continue
		}
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		fmt.Fprintf(&b, "cat > %s <<'STRAFEZONE_EOF'\n%sSTRAFEZONE_EOF\n", path.Join(dir, name), content)
	}

	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
