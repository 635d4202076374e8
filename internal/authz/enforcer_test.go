package authz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	e, err := NewEnforcer(Config{})
	require.NoError(t, err)

	tests := []struct {
		role, resource, action string
		want                   bool
	}{
		{"SUPERADMIN", "anime", "create", true},
		{"SUPERADMIN", "anime", "delete", true},
		{"SUPERADMIN", "season", "delete", true},
		{"SUPERADMIN", "episode", "update", true},
		{"SUPERADMIN", "anime", "read", true},
		{"SUPERADMIN", "watchlist", "create", false},
		{"USER", "anime", "read", true},
		{"USER", "anime", "create", false},
		{"USER", "anime", "delete", false},
		{"USER", "season", "delete", false},
		{"USER", "episode", "create", false},
		{"USER", "watchlist", "create", true},
		{"USER", "watch_progress", "update", true},
		{"USER", "comment", "delete", true},
		{"", "anime", "read", false},
		{"GUEST", "anime", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"_"+tt.resource+"_"+tt.action, func(t *testing.T) {
			got, err := e.Enforce(tt.role, tt.resource, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnforcer_PolicyFileOverride(t *testing.T) {
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.csv")
	require.NoError(t, os.WriteFile(policy, []byte("p, USER, anime, create\n"), 0o600))

	e, err := NewEnforcer(Config{PolicyPath: policy})
	require.NoError(t, err)

	allowed, err := e.Enforce("USER", "anime", "create")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = e.Enforce("SUPERADMIN", "anime", "delete")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestLoadPolicy_Malformed(t *testing.T) {
	e, err := NewEnforcer(Config{})
	require.NoError(t, err)

	assert.Error(t, loadPolicy(e.enforcer, "p, USER, anime\n"))
	assert.Error(t, loadPolicy(e.enforcer, "x, USER, anime, read\n"))
}
