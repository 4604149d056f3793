package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadFile reads a YAML document of environment keys and exports every key
// that the process environment does not already define, mirroring how
// godotenv treats .env files.
//
//	API_BASE_URL: https://api.example.com
//	KAFKA_BROKERS: [broker-1:9092, broker-2:9092]
//	ORDERS_POLL_INTERVAL: 10s
func loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	for key, raw := range values {
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, fileValue(raw)); err != nil {
			return fmt.Errorf("export %s: %w", key, err)
		}
	}
	return nil
}

func fileValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
