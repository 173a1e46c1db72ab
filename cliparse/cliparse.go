package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"

	defaultPort                 = 3000
	defaultSQLitePath           = "what-to-eat.db"
	defaultMaxRequestsPerMinute = 60
	defaultBlacklistDuration    = 10 * time.Minute
	defaultLogLevel             = "info"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	BasePath     string
	StaticDir    string

	// Admission control
	MaxRequestsPerMinute int
	BlacklistDuration    time.Duration

	// Peers allowed to set X-Forwarded-For and X-Real-IP
	TrustedProxies []netip.Prefix

	LogFile  string
	LogLevel string
}

// ParseFlags validates flags and fills unset values from the environment
func ParseFlags(args []string) (Config, error) {
	var (
		cfg     Config
		proxies string
	)

	fs := flag.NewFlagSet("what-to-eat", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (file path for sqlite)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BasePath, "base-path", "", "Path prefix for every route")
	fs.StringVar(&cfg.StaticDir, "static-dir", "", "Directory of built frontend assets")

	fs.IntVar(&cfg.MaxRequestsPerMinute, "max-requests-per-minute", 0, "Requests allowed per client IP per minute")
	fs.DurationVar(&cfg.BlacklistDuration, "blacklist-duration", 0, "Penalty window once the rate limit overflows")

	fs.StringVar(&proxies, "trusted-proxies", "", "Comma separated proxy IPs or CIDRs whose forwarding headers are trusted")

	fs.StringVar(&cfg.LogFile, "log-file", "", "Also write JSON logs to this file")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port out of range: %d", cfg.Port)
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unknown database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == DatabasePostgres {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = defaultSQLitePath
	}

	if cfg.BasePath == "" {
		cfg.BasePath = os.Getenv("BASE_PATH")
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = os.Getenv("STATIC_DIR")
	}

	if cfg.MaxRequestsPerMinute == 0 {
		if v := os.Getenv("MAX_REQUESTS_PER_MINUTE"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid MAX_REQUESTS_PER_MINUTE env variable")
			}
			cfg.MaxRequestsPerMinute = n
		} else {
			cfg.MaxRequestsPerMinute = defaultMaxRequestsPerMinute
		}
	}
	if cfg.MaxRequestsPerMinute <= 0 {
		return Config{}, errors.New("max requests per minute must be positive")
	}

	if cfg.BlacklistDuration == 0 {
		if v := os.Getenv("BLACKLIST_DURATION"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, errors.New("invalid BLACKLIST_DURATION env variable")
			}
			cfg.BlacklistDuration = d
		} else {
			cfg.BlacklistDuration = defaultBlacklistDuration
		}
	}
	if cfg.BlacklistDuration <= 0 {
		return Config{}, errors.New("blacklist duration must be positive")
	}

	if proxies == "" {
		proxies = os.Getenv("TRUSTED_PROXIES")
	}
	trusted, err := ParseTrustedProxies(proxies)
	if err != nil {
		return Config{}, err
	}
	cfg.TrustedProxies = trusted

	if cfg.LogFile == "" {
		cfg.LogFile = os.Getenv("LOG_FILE")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
		if cfg.LogLevel == "" {
			cfg.LogLevel = defaultLogLevel
		}
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	return cfg, nil
}

// ParseTrustedProxies reads a comma separated list of addresses and CIDR
// ranges. A bare address is treated as a single-host prefix.
func ParseTrustedProxies(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
