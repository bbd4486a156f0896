package config

import (
	"fmt"
	"os"
	"strings"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory", "sqlite" or "firestore"
	DBPath         string // sqlite only
	UseMockLLM     bool   // true = use mock even on GCP

	// APITokens maps bearer tokens to user IDs. Format:
	// "token1:user1,token2:user2". Empty means every request is rejected.
	APITokens map[string]string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func parseTokenMap(raw string) (map[string]string, error) {
	out := make(map[string]string)
	if raw == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, user, ok := strings.Cut(pair, ":")
		if !ok || token == "" || user == "" {
			return nil, fmt.Errorf("invalid token entry %q, want token:user", pair)
		}
		out[token] = user
	}
	return out, nil
}

// Load reads all env vars and builds the config.
func Load() (*Config, error) {
	modeStr := getEnv("BRIO_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	tokens, err := parseTokenMap(os.Getenv("BRIO_API_TOKENS"))
	if err != nil {
		return nil, fmt.Errorf("BRIO_API_TOKENS: %w", err)
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("BRIO_PORT", "8080"),

		GCPProjectID: getEnv("BRIO_GCP_PROJECT", ""),
		GCPLocation:  getEnv("BRIO_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("BRIO_MODEL_NAME", "gemini-2.5-flash"),

		StorageBackend: getEnv("BRIO_STORAGE_BACKEND", "memory"),
		DBPath:         getEnv("BRIO_DB_PATH", "data/brio.db"),
		UseMockLLM:     getBoolEnv("BRIO_USE_MOCK_LLM", mode == ModeLocal),

		APITokens: tokens,
	}

	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("BRIO_GCP_PROJECT must be set in gcp mode")
	}
	if cfg.StorageBackend == "firestore" && cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("BRIO_GCP_PROJECT is required for the firestore storage backend")
	}

	return cfg, nil
}
