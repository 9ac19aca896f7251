// Package config holds the validated, in-memory configuration consumed by
// the engine's mechanics (§6.4). Loading the YAML file from disk is an
// external collaborator's job (the admin CLI, §6.3); this package only
// defines the schema, its defaults, and validation.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lab1702/starweb/internal/enginerr"
)

// Range is an inclusive [Min, Max] integer range used throughout the
// world-generation and character-bonus keys of §6.4.
type Range struct {
	Min int `yaml:"min" validate:"min=0"`
	Max int `yaml:"max" validate:"gtefield=Min"`
}

// HomeworldConfig is `game.homeworld.*`.
type HomeworldConfig struct {
	Population    int `yaml:"population" validate:"gt=0"`
	Industry      int `yaml:"industry" validate:"gte=0"`
	Mines         int `yaml:"mines" validate:"gte=0"`
	Metal         int `yaml:"metal" validate:"gte=0"`
	Limit         int `yaml:"limit" validate:"gtefield=Population"`
	ShipsPerFleet int `yaml:"ships_per_fleet" validate:"gt=0"`
	NumFleets     int `yaml:"num_fleets" validate:"gt=0"`
}

// GameConfig is the top-level `game.*` block.
type GameConfig struct {
	MapSize             int             `yaml:"map_size" validate:"gt=0"`
	DefaultTurnDuration int             `yaml:"default_turn_duration" validate:"gt=0"`
	MinTurnDuration     int             `yaml:"min_turn_duration" validate:"gt=0"`
	MaxTurnDuration     int             `yaml:"max_turn_duration" validate:"gtefield=MinTurnDuration"`
	DefaultTargetScore  int             `yaml:"default_target_score" validate:"gt=0"`
	Homeworld           HomeworldConfig `yaml:"homeworld" validate:"required"`
}

// WorldsConfig is the `worlds.*` block governing map generation (§4.1).
type WorldsConfig struct {
	IndustryRange   Range `yaml:"industry_range"`
	MinesRange      Range `yaml:"mines_range"`
	PopulationRange Range `yaml:"population_range"`
	LimitRange      Range `yaml:"limit_range"`
	MinConnections  int   `yaml:"min_connections" validate:"gte=1"`
	MaxConnections  int   `yaml:"max_connections" validate:"gtefield=MinConnections"`
}

// SpecialArtifact is one entry of `artifacts.special_artifacts[]`.
type SpecialArtifact struct {
	Name   string `yaml:"name" validate:"required"`
	Points int    `yaml:"points" validate:"gte=0"`
	// Effect is reserved metadata (§9 Open Questions); never consulted by
	// any mechanic.
	Effect string `yaml:"effect"`
}

// ArtifactsConfig is the `artifacts.*` block.
type ArtifactsConfig struct {
	Types             []string          `yaml:"types"`
	Items             []string          `yaml:"items"`
	SpecialArtifacts  []SpecialArtifact `yaml:"special_artifacts"`
}

// CharacterConfig is one entry of `characters.<Name>.*`.
type CharacterConfig struct {
	IndustryBonus            int     `yaml:"industry_bonus"`
	CargoCapacityMultiplier  float64 `yaml:"cargo_capacity_multiplier" validate:"gt=0"`
	CaptureRatio             float64 `yaml:"capture_ratio" validate:"gt=0"`
	PlunderFraction          float64 `yaml:"plunder_fraction"`
}

// Schema is the complete validated configuration tree. Unknown top-level
// keys encountered while decoding are not rejected by yaml.v3 (it
// silently drops them); callers wanting the spec's "warned, not fatal"
// behavior should decode via Decode, which surfaces them in Warnings
// without failing the load.
type Schema struct {
	Game       GameConfig                 `yaml:"game" validate:"required"`
	Worlds     WorldsConfig               `yaml:"worlds" validate:"required"`
	Artifacts  ArtifactsConfig            `yaml:"artifacts"`
	Characters map[string]CharacterConfig `yaml:"characters"`

	// Warnings accumulates non-fatal issues found during Decode (unknown
	// keys). Not part of the YAML shape itself.
	Warnings []string `yaml:"-"`
}

var validate = validator.New()

// Default returns the schema populated with spec.md §6.4's defaults.
func Default() *Schema {
	return &Schema{
		Game: GameConfig{
			MapSize:             255,
			DefaultTurnDuration: 3600,
			MinTurnDuration:     300,
			MaxTurnDuration:     86400,
			DefaultTargetScore:  8000,
			Homeworld: HomeworldConfig{
				Population:    100,
				Industry:      50,
				Mines:         20,
				Metal:         100,
				Limit:         500,
				ShipsPerFleet: 10,
				NumFleets:     3,
			},
		},
		Worlds: WorldsConfig{
			IndustryRange:   Range{Min: 0, Max: 20},
			MinesRange:      Range{Min: 0, Max: 10},
			PopulationRange: Range{Min: 0, Max: 50},
			LimitRange:      Range{Min: 50, Max: 300},
			MinConnections:  2,
			MaxConnections:  4,
		},
	}
}

// Decode unmarshals raw YAML bytes into a new Schema seeded with
// Default(), surfacing unknown top-level keys as warnings rather than
// errors, and validates the result. A decode or type failure is wrapped
// as a ConfigError (fatal per §6.4); an unknown key is not.
func Decode(raw []byte) (*Schema, error) {
	s := Default()

	var generic map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, &enginerr.ConfigError{Reason: err.Error()}
	}
	known := map[string]bool{"game": true, "worlds": true, "artifacts": true, "characters": true}
	for key := range generic {
		if !known[key] {
			s.Warnings = append(s.Warnings, fmt.Sprintf("unrecognized top-level config key %q", key))
		}
	}

	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, &enginerr.ConfigError{Reason: err.Error()}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate runs struct-tag validation plus the cross-field checks
// validator.v10 tags alone can't express.
func (s *Schema) Validate() error {
	if err := validate.Struct(s); err != nil {
		return &enginerr.ConfigError{Reason: err.Error()}
	}
	for name, cc := range s.Characters {
		if err := validate.Struct(cc); err != nil {
			return &enginerr.ConfigError{Key: "characters." + name, Reason: err.Error()}
		}
	}
	return nil
}
