package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalScenario = `name: minimal
description: a minimal valid scenario
start: "2026-03-15T12:00:00Z"
capsules:
  - id: capsule_a
    title: Corner
    lat: 37.7749
    lon: -122.4194
    radius: 50
    unlock: "2026-03-15T11:00:00Z"
flow:
  - op: unlock
    capsule: capsule_a
`

// TestLoadScenario_Valid tests parsing a well-formed scenario.
func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, minimalScenario))
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Capsules, 1)
	require.Len(t, s.Flow, 1)
}

// TestLoadScenario_RejectsUnknownFields tests strict decoding.
func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, minimalScenario+`assertion:
  - type: unlocked
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

// TestLoadScenario_MissingFile tests the read error path.
func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

// TestLoadScenario_ValidationErrors tests the field checks.
func TestLoadScenario_ValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `description: d
start: "2026-03-15T12:00:00Z"
capsules:
  - id: capsule_a
    title: T
    lat: 1
    lon: 2
    radius: 50
    unlock: "2026-03-15T11:00:00Z"
flow:
  - op: map
`,
			wantErr: "name is required",
		},
		{
			name: "bad start",
			content: `name: n
description: d
start: yesterday
capsules:
  - id: capsule_a
    title: T
    lat: 1
    lon: 2
    radius: 50
    unlock: "2026-03-15T11:00:00Z"
flow:
  - op: map
`,
			wantErr: "start must be RFC 3339",
		},
		{
			name: "key without private",
			content: `name: n
description: d
start: "2026-03-15T12:00:00Z"
capsules:
  - id: capsule_a
    title: T
    lat: 1
    lon: 2
    radius: 50
    unlock: "2026-03-15T11:00:00Z"
    key: sesame
flow:
  - op: map
`,
			wantErr: "key requires private",
		},
		{
			name: "unknown op",
			content: `name: n
description: d
start: "2026-03-15T12:00:00Z"
capsules:
  - id: capsule_a
    title: T
    lat: 1
    lon: 2
    radius: 50
    unlock: "2026-03-15T11:00:00Z"
flow:
  - op: teleport
`,
			wantErr: "unknown op",
		},
		{
			name: "half a position",
			content: `name: n
description: d
start: "2026-03-15T12:00:00Z"
capsules:
  - id: capsule_a
    title: T
    lat: 1
    lon: 2
    radius: 50
    unlock: "2026-03-15T11:00:00Z"
flow:
  - op: move
    lat: 1.0
`,
			wantErr: "both lat and lon",
		},
		{
			name: "expect on non-unlock",
			content: `name: n
description: d
start: "2026-03-15T12:00:00Z"
capsules:
  - id: capsule_a
    title: T
    lat: 1
    lon: 2
    radius: 50
    unlock: "2026-03-15T11:00:00Z"
flow:
  - op: map
    expect:
      state: unlocked
`,
			wantErr: "expect only applies to unlock",
		},
		{
			name: "unknown assertion",
			content: `name: n
description: d
start: "2026-03-15T12:00:00Z"
capsules:
  - id: capsule_a
    title: T
    lat: 1
    lon: 2
    radius: 50
    unlock: "2026-03-15T11:00:00Z"
flow:
  - op: map
assertions:
  - type: state_table
`,
			wantErr: "unknown assertion type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
