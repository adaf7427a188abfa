package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcalc/internal/profile"
)

const testProfile = `
character: tester
stats:
  Attack: 1000
  CritRate: 50
  CritDamage: 100
companions:
  mage/epic: {unlocked: true, level: 3}
  thief/common: {unlocked: false, level: 1}
`

// runCLI runs the command line against a fresh profile and default config.
func runCLI(t *testing.T, profileBody string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(profilePath, []byte(profileBody), 0o644))

	full := append([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--profile", profilePath,
	}, args...)

	var out bytes.Buffer
	err := run(context.Background(), full, &out)
	return out.String(), profilePath, err
}

func TestDPS(t *testing.T) {
	out, _, err := runCLI(t, "stats: {Attack: 1000, CritRate: 50, CritDamage: 100}\n", "dps", "--breakdown")
	require.NoError(t, err)

	assert.Contains(t, out, "default")
	assert.Contains(t, out, "boss dps")
	assert.Contains(t, out, "1500")
	assert.Contains(t, out, "breakdown vs normal")
	assert.Contains(t, out, "crit factor")
}

func TestDPS_UnknownStage(t *testing.T) {
	_, _, err := runCLI(t, testProfile, "dps", "--stage", "moon")
	assert.ErrorContains(t, err, `unknown stage "moon"`)
}

func TestApply_Save(t *testing.T) {
	out, profilePath, err := runCLI(t, "stats: {Attack: 1000, CritRate: 50, CritDamage: 100}\n",
		"apply", "Attack", "100", "--save")
	require.NoError(t, err)

	assert.Contains(t, out, "+10%")
	assert.Contains(t, out, "saved")

	p, err := profile.Load(profilePath)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, p.Stats["Attack"])
	assert.Equal(t, 50.0, p.Stats["CritRate"])
}

func TestApply_BadArgs(t *testing.T) {
	_, _, err := runCLI(t, testProfile, "apply", "Attack")
	assert.ErrorContains(t, err, "STAT DELTA pairs")

	_, _, err = runCLI(t, testProfile, "apply", "Haste", "5")
	assert.ErrorContains(t, err, `unknown stat "Haste"`)

	_, _, err = runCLI(t, testProfile, "apply", "Attack", "lots")
	assert.ErrorContains(t, err, "invalid delta")
}

func TestEquiv(t *testing.T) {
	out, _, err := runCLI(t, testProfile, "equiv", "Attack", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "DPS vs boss")
	assert.Contains(t, out, "DamagePct")
	assert.Contains(t, out, "ineffective")

	out, _, err = runCLI(t, testProfile, "equiv", "Attack", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "no DPS gain to convert")

	out, _, err = runCLI(t, testProfile, "equiv", "Attack", "100", "--to", "Attack")
	require.NoError(t, err)
	assert.Contains(t, out, "matched")
}

func TestOptimize(t *testing.T) {
	out, _, err := runCLI(t, testProfile, "optimize", "--monster", "normal")
	require.NoError(t, err)

	assert.Contains(t, out, "best preset vs normal")
	assert.Contains(t, out, "mage/epic")
	assert.NotContains(t, out, "thief/common", "locked companions never take a slot")
	assert.Regexp(t, `filled\s+1/7\n`, out)
	assert.Regexp(t, `examined\s+1\n`, out)
}

func TestOptimize_LockNotEligible(t *testing.T) {
	_, _, err := runCLI(t, testProfile, "optimize", "--lock", "thief/common")
	assert.ErrorContains(t, err, "locked main companion is not eligible")
}

func TestCompanion(t *testing.T) {
	out, profilePath, err := runCLI(t, testProfile, "companion", "thief/common", "--unlocked", "--level", "2")
	require.NoError(t, err)
	assert.Regexp(t, `thief/common\s+unlocked\s+level 2`, out)
	assert.Contains(t, out, "saved")

	p, err := profile.Load(profilePath)
	require.NoError(t, err)
	assert.Equal(t, profile.CompanionEntry{Unlocked: true, Level: 2}, p.Companions["thief/common"])
	assert.Equal(t, profile.CompanionEntry{Unlocked: true, Level: 3}, p.Companions["mage/epic"])

	out, _, err = runCLI(t, testProfile, "companion", "archer/rare")
	require.NoError(t, err)
	assert.Regexp(t, `archer/rare\s+locked\s+level 1`, out)
	assert.NotContains(t, out, "saved")

	_, _, err = runCLI(t, testProfile, "companion", "mage/epic", "--level", "0")
	assert.ErrorContains(t, err, "out of range")
}

func TestWeights_Export(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "weights.csv")
	xlsxPath := filepath.Join(dir, "weights.xlsx")

	out, _, err := runCLI(t, testProfile, "weights", "--monster", "boss", "--csv", csvPath, "--xlsx", xlsxPath)
	require.NoError(t, err)
	assert.Contains(t, out, "stat weights vs boss")
	assert.NotContains(t, out, "stat weights vs normal")

	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "monster,stat,increment,dps,gain_pct,gain_per_unit"))

	info, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestStages(t *testing.T) {
	out, _, err := runCLI(t, testProfile, "stages")
	require.NoError(t, err)
	assert.Contains(t, out, "citadel")
}

func TestMetricsFile(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "statcalc.prom")
	_, _, err := runCLI(t, testProfile, "--metrics-file", metricsPath, "optimize")
	require.NoError(t, err)

	raw, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "statcalc_optimizer_combinations_total 1")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}
