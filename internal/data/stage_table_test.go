package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcalc/internal/model"
)

func TestLoadStageTable_Embedded(t *testing.T) {
	table, err := LoadStageTable("")
	require.NoError(t, err)
	require.NotEmpty(t, table.All())

	s, ok := table.Stage("Citadel")
	require.True(t, ok)
	assert.Equal(t, 40.0, s.TargetDefense(model.MonsterBoss))
	assert.Equal(t, 25.0, s.TargetDefense(model.MonsterNormal))

	_, ok = table.Stage("moon")
	assert.False(t, ok)
}

func TestLoadStageTable_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing id", "stages:\n  - boss_defense: 10\n"},
		{"duplicate", "stages:\n  - id: a\n  - id: A\n"},
		{"defense out of range", "stages:\n  - id: a\n    boss_defense: 120\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "stages.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.raw), 0o644))

			_, err := LoadStageTable(path)
			assert.Error(t, err)
		})
	}
}
