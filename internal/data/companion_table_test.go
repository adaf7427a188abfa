package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcalc/internal/model"
)

func TestLoadCompanionTable_Embedded(t *testing.T) {
	table, err := LoadCompanionTable("", 10, model.UnknownStatStrict)
	require.NoError(t, err)
	assert.Equal(t, 10, table.MaxLevel())

	for _, class := range model.AllClasses() {
		for _, rarity := range model.AllRarities() {
			for level := 1; level <= 10; level++ {
				b, ok := table.Lookup(class, rarity, level)
				require.True(t, ok, "%s/%s level %d", class, rarity, level)
				assert.False(t, b.Equip.IsZero(), "%s/%s equip", class, rarity)
				assert.False(t, b.Inventory.IsZero(), "%s/%s inventory", class, rarity)
			}
		}
	}
}

func TestCompanionTable_Formulas(t *testing.T) {
	table, err := LoadCompanionTable("", 10, model.UnknownStatStrict)
	require.NoError(t, err)

	// warrior equip AttackPct = tier * (2 + level / 2)
	b, ok := table.Lookup(model.ClassWarrior, model.RarityEpic, 4)
	require.True(t, ok)
	assert.InDelta(t, 12.0, b.Equip[model.StatAttackPct], 1e-9)
	assert.InDelta(t, 60.0, b.Inventory[model.StatAttack], 1e-9)
	assert.Equal(t, 4, b.Level)
	assert.Equal(t, model.CompanionKey{Class: model.ClassWarrior, Rarity: model.RarityEpic}, b.Key)

	// pirate hits both monster types
	b, ok = table.Lookup(model.ClassPirate, model.RarityLegendary, 10)
	require.True(t, ok)
	assert.InDelta(t, 25.0, b.Equip[model.StatBossDamagePct], 1e-9)
	assert.InDelta(t, 25.0, b.Equip[model.StatNormalDamagePct], 1e-9)
}

func TestCompanionTable_LookupInvalid(t *testing.T) {
	table, err := LoadCompanionTable("", 10, model.UnknownStatStrict)
	require.NoError(t, err)

	tests := []struct {
		name   string
		class  model.CompanionClass
		rarity model.Rarity
		level  int
	}{
		{"level zero", model.ClassMage, model.RarityRare, 0},
		{"level above max", model.ClassMage, model.RarityRare, 11},
		{"unknown class", model.CompanionClass(9), model.RarityRare, 1},
		{"unknown rarity", model.ClassMage, model.Rarity(9), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := table.Lookup(tt.class, tt.rarity, tt.level)
			assert.False(t, ok)
			assert.Nil(t, b)
		})
	}
}

func TestCompanionTable_LookupReturnsCopy(t *testing.T) {
	table, err := LoadCompanionTable("", 10, model.UnknownStatStrict)
	require.NoError(t, err)

	b, _ := table.Lookup(model.ClassArcher, model.RarityRare, 2)
	b.Equip[model.StatCritDamage] = -1000

	again, _ := table.Lookup(model.ClassArcher, model.RarityRare, 2)
	assert.Positive(t, again.Equip[model.StatCritDamage])
}

func TestParseCompanionTable_UnknownStat(t *testing.T) {
	raw := []byte(`
classes:
  mage:
    equip:
      Haste: "level"
      DamagePct: "2 * level"
`)

	_, err := ParseCompanionTable(raw, 3, model.UnknownStatStrict)
	var unknown *model.UnknownStatError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Haste", unknown.Name)

	table, err := ParseCompanionTable(raw, 3, model.UnknownStatLenient)
	require.NoError(t, err)
	b, ok := table.Lookup(model.ClassMage, model.RarityCommon, 3)
	require.True(t, ok)
	assert.InDelta(t, 6.0, b.Equip[model.StatDamagePct], 1e-9)

	// Classes missing from the file do not resolve.
	_, ok = table.Lookup(model.ClassThief, model.RarityCommon, 1)
	assert.False(t, ok)
}

func TestParseCompanionTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bad class", "classes:\n  paladin:\n    equip:\n      Attack: \"1\"\n"},
		{"bad expression", "classes:\n  mage:\n    equip:\n      Attack: \"level +\"\n"},
		{"non numeric", "classes:\n  mage:\n    equip:\n      Attack: \"'ten'\"\n"},
		{"bad yaml", "classes: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCompanionTable([]byte(tt.raw), 5, model.UnknownStatStrict)
			assert.Error(t, err)
		})
	}

	_, err := ParseCompanionTable([]byte("classes: {}\n"), 0, model.UnknownStatStrict)
	assert.Error(t, err)
}

func TestLoadCompanionTable_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classes:\n  thief:\n    equip:\n      AttackSpeed: \"tier\"\n"), 0o644))

	table, err := LoadCompanionTable(path, 2, model.UnknownStatStrict)
	require.NoError(t, err)

	b, ok := table.Lookup(model.ClassThief, model.RarityUnique, 2)
	require.True(t, ok)
	assert.InDelta(t, 4.0, b.Equip[model.StatAttackSpeed], 1e-9)

	_, err = LoadCompanionTable(filepath.Join(t.TempDir(), "missing.yaml"), 2, model.UnknownStatStrict)
	assert.Error(t, err)
}
