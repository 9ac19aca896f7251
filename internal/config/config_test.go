package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lab1702/starweb/internal/enginerr"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDecodeAppliesOverridesOntoDefaults(t *testing.T) {
	raw := []byte(`
game:
  map_size: 100
  default_turn_duration: 3600
  min_turn_duration: 300
  max_turn_duration: 86400
  default_target_score: 8000
  homeworld:
    population: 100
    industry: 50
    mines: 20
    metal: 100
    limit: 500
    ships_per_fleet: 10
    num_fleets: 3
worlds:
  min_connections: 2
  max_connections: 4
characters:
  Pirate:
    cargo_capacity_multiplier: 1.5
    capture_ratio: 0.75
    plunder_fraction: 0.6
`)
	s, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 100, s.Game.MapSize)
	assert.Equal(t, 0.6, s.Characters["Pirate"].PlunderFraction)
	assert.Empty(t, s.Warnings)
}

func TestDecodeWarnsOnUnknownTopLevelKey(t *testing.T) {
	raw := []byte(`
game:
  map_size: 255
  default_turn_duration: 3600
  min_turn_duration: 300
  max_turn_duration: 86400
  default_target_score: 8000
  homeworld:
    population: 100
    industry: 50
    mines: 20
    metal: 100
    limit: 500
    ships_per_fleet: 10
    num_fleets: 3
worlds:
  min_connections: 2
  max_connections: 4
bogus_section:
  foo: bar
`)
	s, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "bogus_section")
}

func TestDecodeRejectsMalformedYAML(t *testing.T) {
	_, err := Decode([]byte("game: [this is not a mapping"))
	require.Error(t, err)
	var cfgErr *enginerr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestValidateRejectsBadRange(t *testing.T) {
	s := Default()
	s.Worlds.MaxConnections = 1 // below MinConnections(2)
	err := s.Validate()
	require.Error(t, err)
	var cfgErr *enginerr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestValidateRejectsBadCharacterConfig(t *testing.T) {
	s := Default()
	s.Characters = map[string]CharacterConfig{
		"Trader": {CargoCapacityMultiplier: -1, CaptureRatio: 1},
	}
	err := s.Validate()
	require.Error(t, err)
	var cfgErr *enginerr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "characters.Trader", cfgErr.Key)
}
