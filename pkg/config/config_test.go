package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig_Thresholds verifies the interference thresholds carry
// their documented defaults
func TestDefaultConfig_Thresholds(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Field.EntangleThreshold != 0.5 {
		t.Errorf("EntangleThreshold = %v, want 0.5", cfg.Field.EntangleThreshold)
	}
	if cfg.Field.AmplifyThreshold != 0.1 {
		t.Errorf("AmplifyThreshold = %v, want 0.1", cfg.Field.AmplifyThreshold)
	}
	if cfg.Field.DampThreshold != -0.2 {
		t.Errorf("DampThreshold = %v, want -0.2", cfg.Field.DampThreshold)
	}
}

// TestDefaultConfig_DecayPolicy verifies the temporal defaults
func TestDefaultConfig_DecayPolicy(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Decay.Policy != "adaptive" {
		t.Errorf("Policy = %q, want %q", cfg.Decay.Policy, "adaptive")
	}
	if cfg.Decay.Lambda == 0 {
		t.Error("Lambda should not be zero")
	}
	if cfg.Decay.ConsolidateAge != 10 {
		t.Errorf("ConsolidateAge = %d, want 10", cfg.Decay.ConsolidateAge)
	}
}

// TestDefaultConfig_Embedding verifies embedding defaults are usable
func TestDefaultConfig_Embedding(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("Dimensions = %d, want 384", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.CacheSize == 0 {
		t.Error("CacheSize should not be zero")
	}
}

// TestLoadConfig_MissingFile verifies a missing file yields defaults
func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Field.CouplingConstant != 0.1 {
		t.Errorf("CouplingConstant = %v, want default 0.1", cfg.Field.CouplingConstant)
	}
}

// TestLoadConfig_FileOverridesDefaults verifies JSON values win over defaults
func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semweave.json")
	body := `{"field": {"entangle_threshold": 0.6, "loop_window": 8}, "crystal": {"min_cluster_size": 3}}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Field.EntangleThreshold != 0.6 {
		t.Errorf("EntangleThreshold = %v, want 0.6", cfg.Field.EntangleThreshold)
	}
	if cfg.Field.LoopWindow != 8 {
		t.Errorf("LoopWindow = %d, want 8", cfg.Field.LoopWindow)
	}
	if cfg.Crystal.MinClusterSize != 3 {
		t.Errorf("MinClusterSize = %d, want 3", cfg.Crystal.MinClusterSize)
	}
	// Untouched keys keep their defaults.
	if cfg.Field.AmplifyThreshold != 0.1 {
		t.Errorf("AmplifyThreshold = %v, want default 0.1", cfg.Field.AmplifyThreshold)
	}
}

// TestLoadConfig_EnvOverridesFile verifies env wins over the file layer
func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semweave.json")
	if err := os.WriteFile(path, []byte(`{"log": {"level": "DEBUG"}}`), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SEMWEAVE_LOG_LEVEL", "ERROR")
	t.Setenv("SEMWEAVE_INDEX_ENABLED", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "ERROR" {
		t.Errorf("Level = %q, want %q", cfg.Log.Level, "ERROR")
	}
	if !cfg.Index.Enabled {
		t.Error("Index.Enabled should be true from env")
	}
}

// TestEngineConfig_Mapping verifies the file shape reaches the engine config
func TestEngineConfig_Mapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Field.ResonanceThreshold = 0.07
	cfg.Decay.DecoherenceRate = 0.009
	cfg.Field.Frequencies = map[string]float64{"coffee": 2.0}

	fc := cfg.EngineConfig()
	if fc.ResonanceThreshold != 0.07 {
		t.Errorf("ResonanceThreshold = %v, want 0.07", fc.ResonanceThreshold)
	}
	if fc.Decay.DecoherenceRate != 0.009 {
		t.Errorf("DecoherenceRate = %v, want 0.009", fc.Decay.DecoherenceRate)
	}
	if fc.Frequencies["coffee"] != 2.0 {
		t.Errorf("Frequencies[coffee] = %v, want 2.0", fc.Frequencies["coffee"])
	}
}

// TestSaveConfig_Roundtrip verifies save then load preserves values
func TestSaveConfig_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "semweave.json")

	cfg := DefaultConfig()
	cfg.Field.VacuumEnergy = 0.02
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Field.VacuumEnergy != 0.02 {
		t.Errorf("VacuumEnergy = %v, want 0.02", loaded.Field.VacuumEnergy)
	}
}
