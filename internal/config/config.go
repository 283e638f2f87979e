package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings shared by the CLI, the HTTP server and the
// MCP server. Flags override values loaded here.
type Config struct {
	DataDir    string        `json:"data_dir"`
	Port       int           `json:"port"`
	JumpLY     float64       `json:"jump_ly"`      // default max jump distance for queries
	BuildMaxLY float64       `json:"build_max_ly"` // longest jump link generated by the builder
	Efficiency float64       `json:"efficiency"`   // default fuel efficiency
	Timeout    time.Duration `json:"timeout"`      // per path search; 0 = unbounded
	RawURL     string        `json:"raw_url"`      // raw bundle download, optional
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir:    "data",
		Port:       13370,
		JumpLY:     100,
		BuildMaxLY: 300,
		Efficiency: 0.4,
		Timeout:    10 * time.Second,
	}
}

// FromEnv returns Default overridden by EFTB_* environment variables.
func FromEnv() (*Config, error) {
	c := Default()
	c.DataDir = envOrDefault("EFTB_DATA_DIR", c.DataDir)
	c.RawURL = envOrDefault("EFTB_RAW_URL", c.RawURL)

	if v := os.Getenv("EFTB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("EFTB_PORT %q: not a valid port", v)
		}
		c.Port = p
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"EFTB_JUMP_LY", &c.JumpLY},
		{"EFTB_BUILD_MAX_LY", &c.BuildMaxLY},
		{"EFTB_EFFICIENCY", &c.Efficiency},
	} {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			return nil, fmt.Errorf("%s %q: want a finite non-negative number", f.key, v)
		}
		*f.dst = n
	}
	if v := os.Getenv("EFTB_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return nil, fmt.Errorf("EFTB_TIMEOUT %q: %w", v, err)
		}
		c.Timeout = d
	}
	return c, nil
}

// maxTimeout matches the longest search timeout the query layer accepts.
const maxTimeout = 24 * time.Hour

// parseTimeout accepts a Go duration ("1.5s") or plain seconds ("10").
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if math.IsNaN(secs) || secs < 0 {
			return 0, fmt.Errorf("want a non-negative number of seconds")
		}
		if secs > maxTimeout.Seconds() {
			return 0, fmt.Errorf("timeout above %v", maxTimeout)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout")
	}
	if d > maxTimeout {
		return 0, fmt.Errorf("timeout above %v", maxTimeout)
	}
	return d, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
