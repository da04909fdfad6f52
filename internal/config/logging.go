package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/loopthru/internal/logging"
)

// LoadLoggingFile reads the [logging] table of a config file. Keys besides
// level and format are module levels, as are the keys of a nested
// [logging.modules] table.
func LoadLoggingFile(path string) (logging.Config, error) {
	cfg := defaultLoggingConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var doc struct {
		Logging map[string]any `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	for key, value := range doc.Logging {
		switch v := value.(type) {
		case string:
			switch key {
			case "level":
				cfg.Level = v
			case "format":
				cfg.Format = v
			default:
				cfg.Modules[key] = v
			}
		case map[string]any:
			if key == "modules" {
				for module, level := range v {
					if s, ok := level.(string); ok {
						cfg.Modules[module] = s
					}
				}
			}
		}
	}

	if !logging.ValidLevel(cfg.Level) {
		return cfg, fmt.Errorf("invalid logging level %q", cfg.Level)
	}
	for module, level := range cfg.Modules {
		if !logging.ValidLevel(level) {
			return cfg, fmt.Errorf("invalid logging level %q for %s", level, module)
		}
	}
	return cfg, nil
}

func defaultLoggingConfig() logging.Config {
	return logging.Config{Level: "info", Format: "text", Modules: map[string]string{}}
}
