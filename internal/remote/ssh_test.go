package remote

import (
	"strings"
	"testing"
)

func TestSpawnFailedDecision(t *testing.T) {
	cases := []struct {
		name   string
		stdout string
		stderr string
		failed bool
	}{
		{"stderr only", "", "no configuration file provided", true},
		{"whitespace stdout with stderr", " \n\t", "compose: command not found", true},
		{"stdout and stderr", "Container cs2-abc123 Started", "Creating network cs2-net", false},
		{"stdout only", "Container cs2-abc123 Started", "", false},
		{"both empty", "", "", false},
	}

	for _, tc := range cases {
		if got := spawnFailed(tc.stdout, tc.stderr); got != tc.failed {
			t.Errorf("%s: spawnFailed = %v, want %v", tc.name, got, tc.failed)
		}
	}
}

func TestProvisionScriptWritesAllArtifacts(t *testing.T) {
	script := provisionScript("/opt/cs2/instances/abc123", map[string]string{
		composeFile:      "services:\n",
		serverConfigFile: `hostname "x"`,
		adminListFile:    "{}\n",
	})

	if !strings.HasPrefix(script, "mkdir -p /opt/cs2/instances/abc123\n") {
		t.Errorf("script does not create the instance dir:\n%s", script)
	}
	for _, name := range []string{composeFile, serverConfigFile, adminListFile} {
		if !strings.Contains(script, "cat > /opt/cs2/instances/abc123/"+name+" <<'STRAFEZONE_EOF'\n") {
			t.Errorf("script does not write %s:\n%s", name, script)
		}
	}
	// One terminator per file; content missing a trailing newline still
	// gets its delimiter on its own line
	if n := strings.Count(script, "\nSTRAFEZONE_EOF\n"); n != 3 {
		t.Errorf("got %d heredoc terminators, want 3:\n%s", n, script)
	}
}
