// Package config loads application configuration from built-in defaults,
// an optional config/app.json file, and an optional .env file (in that
// order — later sources win). Values are read through typed accessors so
// the rest of the codebase never touches raw keys.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAppPort        = "5000"
	defaultAppEnv         = "development"
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultMongoDB        = "pokedex"
	defaultPokeAPIURL     = "https://pokeapi.co/api/v2"
	defaultPokeAPITimeout = "10s"
	defaultRedisAddr      = "localhost:6379"
	defaultCacheTTL       = "10m"
	defaultMaxBodyBytes   = "4194304" // 4 MB
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once. Missing files are not errors;
// malformed files are.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":        defaultAppPort,
		"APP_ENV":         defaultAppEnv,
		"MONGODB_URI":     defaultMongoURI,
		"MONGODB_DB":      defaultMongoDB,
		"POKEAPI_URL":     defaultPokeAPIURL,
		"POKEAPI_TIMEOUT": defaultPokeAPITimeout,
		"REDIS_ADDR":      defaultRedisAddr,
		"REDIS_PASSWORD":  "",
		"CACHE_TTL":       defaultCacheTTL,
		"LOG_TO_MONGO":    "",
		"MAX_BODY_BYTES":  defaultMaxBodyBytes,
	}
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func MongoURI() string {
	_ = Load()
	return get("MONGODB_URI", defaultMongoURI)
}

func MongoDB() string {
	_ = Load()
	return get("MONGODB_DB", defaultMongoDB)
}

// PokeAPIURL is the base URL of the enrichment source, without a trailing
// slash.
func PokeAPIURL() string {
	_ = Load()
	return strings.TrimRight(get("POKEAPI_URL", defaultPokeAPIURL), "/")
}

// PokeAPITimeout bounds every outbound enrichment lookup so a slow third
// party cannot stall a request indefinitely.
func PokeAPITimeout() time.Duration {
	_ = Load()
	return duration("POKEAPI_TIMEOUT", defaultPokeAPITimeout)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// CacheTTL is how long enrichment lookups stay cached.
func CacheTTL() time.Duration {
	_ = Load()
	return duration("CACHE_TTL", defaultCacheTTL)
}

// LogMongoCollection returns the collection name for the Mongo log sink,
// or "" when Mongo logging is disabled.
func LogMongoCollection() string {
	_ = Load()
	return get("LOG_TO_MONGO", "")
}

// MaxBodyBytes caps inbound request bodies.
func MaxBodyBytes() int64 {
	_ = Load()
	n, err := strconv.ParseInt(get("MAX_BODY_BYTES", defaultMaxBodyBytes), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20
	}
	return n
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

func duration(key, fallback string) time.Duration {
	raw := get(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}
