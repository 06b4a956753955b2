package config

// #region imports
import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/caseline/caseline/internal/casestore"
	"github.com/caseline/caseline/internal/confidence"
	"github.com/caseline/caseline/internal/embed"
	"github.com/caseline/caseline/internal/knowledge"
	"github.com/caseline/caseline/internal/retrieval"
)

// #endregion

// #region config-struct

// Config bundles every tunable for a caseline process. The YAML file is
// optional; env vars override whatever the file says, so a container can be
// repointed without editing the file.
type Config struct {
	DataDir    string            `yaml:"data_dir"`
	EvalDBPath string            `yaml:"eval_db_path"`
	Store      casestore.Config  `yaml:"store"`
	Embed      embed.Config      `yaml:"embed"`
	Retrieval  retrieval.Config  `yaml:"retrieval"`
	Confidence confidence.Config `yaml:"confidence"`
	Knowledge  knowledge.Config  `yaml:"knowledge"`
}

// Default returns the full default configuration rooted at dataDir
// ("data" when empty).
func Default(dataDir string) Config {
	if dataDir == "" {
		dataDir = "data"
	}
	return Config{
		DataDir:    dataDir,
		EvalDBPath: filepath.Join(dataDir, "caseline.db"),
		Store:      casestore.DefaultConfig(dataDir),
		Embed:      embed.DefaultConfig(),
		Retrieval:  retrieval.DefaultConfig(),
		Confidence: confidence.DefaultConfig(),
		Knowledge:  knowledge.DefaultConfig(),
	}
}

// #endregion config-struct

// #region load

// Load builds the config: defaults, then the YAML file at path (optional,
// falls back to CASELINE_CONFIG, silently skipped when absent), then env
// overrides on top. A file that exists but does not parse is an error.
func Load(path string) (Config, error) {
	cfg := Default(os.Getenv("CASELINE_DATA"))

	if path == "" {
		path = os.Getenv("CASELINE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else {
			base := cfg
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			rerootPaths(&cfg, base)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// rerootPaths re-derives store and db paths that the file left at their
// defaults when the file moved data_dir.
func rerootPaths(cfg *Config, base Config) {
	if cfg.DataDir == base.DataDir {
		return
	}
	if cfg.Store.Path == base.Store.Path {
		cfg.Store.Path = filepath.Join(cfg.DataDir, "case_vectors.json")
	}
	if cfg.Store.KeyPath == base.Store.KeyPath {
		cfg.Store.KeyPath = filepath.Join(cfg.DataDir, ".case_key")
	}
	if cfg.EvalDBPath == base.EvalDBPath {
		cfg.EvalDBPath = filepath.Join(cfg.DataDir, "caseline.db")
	}
}

// applyEnv forces env-var settings over whatever the file configured.
func applyEnv(cfg *Config) {
	if v := os.Getenv("EMBED_PROVIDER"); v != "" {
		cfg.Embed.Provider = v
	}
	if v := os.Getenv("EMBED_BASE_URL"); v != "" {
		cfg.Embed.BaseURL = v
	}
	if v := os.Getenv("EMBED_MODEL"); v != "" {
		cfg.Embed.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Embed.APIKey = v
	}
	if v := os.Getenv("EVIDENCE_BASE_URL"); v != "" {
		cfg.Knowledge.BaseURL = v
	}
	if v := os.Getenv("EVIDENCE_API_KEY"); v != "" {
		cfg.Knowledge.APIKey = v
	}
	if v := os.Getenv("EVIDENCE_ENABLED"); v != "" {
		cfg.Knowledge.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("CASELINE_ENCRYPT"); v != "" {
		cfg.Store.EncryptAtRest = v == "true" || v == "1"
	}
}

// #endregion load
