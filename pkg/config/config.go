package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/dotsetgreg/semweave/pkg/field"
)

type Config struct {
	Field     FieldConfig     `json:"field"`
	Decay     DecayConfig     `json:"decay"`
	Crystal   CrystalConfig   `json:"crystal"`
	Embedding EmbeddingConfig `json:"embedding"`
	Index     IndexConfig     `json:"index"`
	Archive   ArchiveConfig   `json:"archive"`
	Log       LogConfig       `json:"log"`
}

type FieldConfig struct {
	TensorFrame        int                `json:"tensor_frame" env:"SEMWEAVE_FIELD_TENSOR_FRAME"`
	CouplingConstant   float64            `json:"coupling_constant" env:"SEMWEAVE_FIELD_COUPLING_CONSTANT"`
	EntangleThreshold  float64            `json:"entangle_threshold" env:"SEMWEAVE_FIELD_ENTANGLE_THRESHOLD"`
	AmplifyThreshold   float64            `json:"amplify_threshold" env:"SEMWEAVE_FIELD_AMPLIFY_THRESHOLD"`
	DampThreshold      float64            `json:"damp_threshold" env:"SEMWEAVE_FIELD_DAMP_THRESHOLD"`
	ResonanceThreshold float64            `json:"resonance_threshold" env:"SEMWEAVE_FIELD_RESONANCE_THRESHOLD"`
	VacuumEnergy       float64            `json:"vacuum_energy" env:"SEMWEAVE_FIELD_VACUUM_ENERGY"`
	MaxEvidence        int                `json:"max_evidence" env:"SEMWEAVE_FIELD_MAX_EVIDENCE"`
	PruneAmplitude     float64            `json:"prune_amplitude" env:"SEMWEAVE_FIELD_PRUNE_AMPLITUDE"`
	LoopWindow         int                `json:"loop_window" env:"SEMWEAVE_FIELD_LOOP_WINDOW"`
	Frequencies        map[string]float64 `json:"frequencies"`
}

type DecayConfig struct {
	Policy               string  `json:"policy" env:"SEMWEAVE_DECAY_POLICY"`
	Lambda               float64 `json:"lambda" env:"SEMWEAVE_DECAY_LAMBDA"`
	Exponent             float64 `json:"exponent" env:"SEMWEAVE_DECAY_EXPONENT"`
	KeywordThreshold     int     `json:"keyword_threshold" env:"SEMWEAVE_DECAY_KEYWORD_THRESHOLD"`
	ConsolidateAge       int     `json:"consolidate_age" env:"SEMWEAVE_DECAY_CONSOLIDATE_AGE"`
	ConsolidateAmplitude float64 `json:"consolidate_amplitude" env:"SEMWEAVE_DECAY_CONSOLIDATE_AMPLITUDE"`
	ConsolidateBoost     float64 `json:"consolidate_boost" env:"SEMWEAVE_DECAY_CONSOLIDATE_BOOST"`
	DecoherenceRate      float64 `json:"decoherence_rate" env:"SEMWEAVE_DECAY_DECOHERENCE_RATE"`
}

type CrystalConfig struct {
	StabilityThreshold float64 `json:"stability_threshold" env:"SEMWEAVE_CRYSTAL_STABILITY_THRESHOLD"`
	MinClusterSize     int     `json:"min_cluster_size" env:"SEMWEAVE_CRYSTAL_MIN_CLUSTER_SIZE"`
}

type EmbeddingConfig struct {
	Dimensions int `json:"dimensions" env:"SEMWEAVE_EMBEDDING_DIMENSIONS"`
	CacheSize  int `json:"cache_size" env:"SEMWEAVE_EMBEDDING_CACHE_SIZE"`
}

type IndexConfig struct {
	Enabled        bool `json:"enabled" env:"SEMWEAVE_INDEX_ENABLED"`
	CandidateLimit int  `json:"candidate_limit" env:"SEMWEAVE_INDEX_CANDIDATE_LIMIT"`
}

type ArchiveConfig struct {
	Enabled bool   `json:"enabled" env:"SEMWEAVE_ARCHIVE_ENABLED"`
	Path    string `json:"path" env:"SEMWEAVE_ARCHIVE_PATH"`
}

type LogConfig struct {
	Level string `json:"level" env:"SEMWEAVE_LOG_LEVEL"`
}

func DefaultConfig() *Config {
	return &Config{
		Field: FieldConfig{
			TensorFrame:        32,
			CouplingConstant:   0.1,
			EntangleThreshold:  0.5,
			AmplifyThreshold:   0.1,
			DampThreshold:      -0.2,
			ResonanceThreshold: 0.05,
			VacuumEnergy:       0.01,
			MaxEvidence:        5,
			PruneAmplitude:     0.01,
			LoopWindow:         16,
		},
		Decay: DecayConfig{
			Policy:               "adaptive",
			Lambda:               0.01,
			Exponent:             0.5,
			KeywordThreshold:     5,
			ConsolidateAge:       10,
			ConsolidateAmplitude: 0.8,
			ConsolidateBoost:     0.1,
			DecoherenceRate:      0.005,
		},
		Crystal: CrystalConfig{
			StabilityThreshold: 0.7,
			MinClusterSize:     2,
		},
		Embedding: EmbeddingConfig{
			Dimensions: 384,
			CacheSize:  4096,
		},
		Index: IndexConfig{
			Enabled:        false,
			CandidateLimit: 64,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Path:    "~/.semweave/archive.db",
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// LoadConfig layers defaults, an optional JSON file and SEMWEAVE_*
// environment overrides, in that order. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// EngineConfig maps the file/env shape onto the engine's own config type.
func (c *Config) EngineConfig() field.Config {
	return field.Config{
		TensorFrame:        c.Field.TensorFrame,
		CouplingConstant:   c.Field.CouplingConstant,
		EntangleThreshold:  c.Field.EntangleThreshold,
		AmplifyThreshold:   c.Field.AmplifyThreshold,
		DampThreshold:      c.Field.DampThreshold,
		ResonanceThreshold: c.Field.ResonanceThreshold,
		VacuumEnergy:       c.Field.VacuumEnergy,
		MaxEvidence:        c.Field.MaxEvidence,
		PruneAmplitude:     c.Field.PruneAmplitude,
		LoopWindow:         c.Field.LoopWindow,
		Frequencies:        field.FrequencyMap(c.Field.Frequencies),
		Decay: field.DecayConfig{
			Policy:               field.DecayPolicy(c.Decay.Policy),
			Lambda:               c.Decay.Lambda,
			Exponent:             c.Decay.Exponent,
			KeywordThreshold:     c.Decay.KeywordThreshold,
			ConsolidateAge:       c.Decay.ConsolidateAge,
			ConsolidateAmplitude: c.Decay.ConsolidateAmplitude,
			ConsolidateBoost:     c.Decay.ConsolidateBoost,
			DecoherenceRate:      c.Decay.DecoherenceRate,
		},
		Crystal: field.CrystalConfig{
			StabilityThreshold: c.Crystal.StabilityThreshold,
			MinClusterSize:     c.Crystal.MinClusterSize,
		},
	}
}

// ArchivePath returns the archive location with ~ expanded.
func (c *Config) ArchivePath() string {
	return expandHome(c.Archive.Path)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
