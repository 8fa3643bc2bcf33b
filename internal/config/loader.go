package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"agentd/internal/errs"
)

// Load returns the defaults overlaid with config.toml and models.toml under p.
// Missing files are skipped; unreadable or malformed files are errors.
func Load(p Paths) (Config, error) {
	cfg := Default()
	if err := overlayIfExists(&cfg, p.ConfigFile()); err != nil {
		return cfg, err
	}
	models, err := loadModelsFile(p.ModelsFile())
	if err != nil {
		return cfg, err
	}
	if cfg.Models == nil {
		cfg.Models = map[string]ModelEntry{}
	}
	for name, e := range models {
		cfg.Models[name] = e
	}
	return cfg, nil
}

// Overlay decodes path into cfg, keeping fields the file does not set.
func Overlay(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errs.IO(err, "read %s", path)
	}
	if err := decode(path, b, cfg); err != nil {
		return err
	}
	if cfg.Models == nil {
		cfg.Models = map[string]ModelEntry{}
	}
	return nil
}

func overlayIfExists(cfg *Config, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return Overlay(cfg, path)
}

// loadModelsFile reads a top-level table of name -> entry.
func loadModelsFile(path string) (map[string]ModelEntry, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.IO(err, "read %s", path)
	}
	models := map[string]ModelEntry{}
	if err := toml.Unmarshal(b, &models); err != nil {
		return nil, errs.ConfigParse(path, err)
	}
	for name, e := range models {
		if strings.TrimSpace(e.File) == "" {
			return nil, errs.ConfigParse(path, fmt.Errorf("model %q: file is required", name))
		}
	}
	return models, nil
}

func decode(path string, b []byte, v any) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	case ".json":
		err = json.Unmarshal(b, v)
	case ".toml":
		err = toml.Unmarshal(b, v)
	default:
		return errs.ConfigParse(path, fmt.Errorf("unsupported config extension: %s", ext))
	}
	if err != nil {
		return errs.ConfigParse(path, err)
	}
	return nil
}
