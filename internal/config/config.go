package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
	Room     struct {
		// ID is the room id or the room page URL.
		ID string `json:"id"`
		// Topic is the feed topic captured from the room page's traffic.
		Topic string `json:"topic"`
	} `json:"room"`
	Cookies struct {
		MH5Tk    string `json:"m_h5_tk"`
		MH5TkEnc string `json:"m_h5_tk_enc"`
	} `json:"cookies"`
	Sink struct {
		Capacity int `json:"capacity"` // 0 = unbounded
	} `json:"sink"`
	Record struct {
		Enabled bool   `json:"enabled"`
		Dir     string `json:"dir"` // defaults to data_dir
	} `json:"record"`
	HTTP struct {
		Enabled bool   `json:"enabled"`
		Listen  string `json:"listen"`
		Token   string `json:"token"`
	} `json:"http"`
	Telegram struct {
		Token  string   `json:"token"`
		ChatID int64    `json:"chat_id"`
		Kinds  []string `json:"kinds"`
	} `json:"telegram"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:  filepath.Join(os.Getenv("HOME"), ".danmaku"),
		LogLevel: "info",
	}
	cfg.Sink.Capacity = 1024
	cfg.HTTP.Listen = "127.0.0.1:8765"
	cfg.Telegram.Kinds = []string{"gift", "member_join"}

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if room := os.Getenv("DANMAKU_ROOM"); room != "" {
		cfg.Room.ID = room
	}
	if topic := os.Getenv("DANMAKU_TOPIC"); topic != "" {
		cfg.Room.Topic = topic
	}
	if tk := os.Getenv("DANMAKU_M_H5_TK"); tk != "" {
		cfg.Cookies.MH5Tk = tk
	}
	if enc := os.Getenv("DANMAKU_M_H5_TK_ENC"); enc != "" {
		cfg.Cookies.MH5TkEnc = enc
	}
	if tgToken := os.Getenv("DANMAKU_TELEGRAM_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	if cfg.Record.Dir == "" {
		cfg.Record.Dir = cfg.DataDir
	}

	return cfg, nil
}

// Save writes the config atomically, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ListValues returns the config as a flat dot-keyed map, masking secrets
// when redact is set.
func ListValues(cfg *Config, redact bool) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var nested map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, err
	}
	flat := Flatten(nested)
	if redact {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue returns a single dot-keyed value from the config at path.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	values, err := ListValues(cfg, false)
	if err != nil {
		return nil, err
	}
	val, ok := values[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return val, nil
}
