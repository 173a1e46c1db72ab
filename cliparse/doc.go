// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - DatabaseType: sqlite (default) or postgres
  - DatabaseURL: sqlite file path or PostgreSQL connection string
  - BasePath: prefix mounted in front of every route
  - StaticDir: built frontend served at the base path root
  - MaxRequestsPerMinute: per-IP request budget (default: 60)
  - BlacklistDuration: penalty window after an overflow (default: 10m)
  - LogFile, LogLevel: logging sinks

# CLI Flags

	-p                        Server port
	-d                        Database URL
	-t                        Database type
	--base-path               Route prefix
	--static-dir              Frontend assets
	--max-requests-per-minute Rate limit threshold
	--blacklist-duration      Penalty window (Go duration, e.g. 10m)
	--log-file                JSON log file
	--log-level               debug, info, warn, error

# Environment Variables

Flags fall back to environment variables:

	PORT                    → -p
	DATABASE_URL            → -d
	DATABASE_TYPE           → -t
	BASE_PATH               → --base-path
	STATIC_DIR              → --static-dir
	MAX_REQUESTS_PER_MINUTE → --max-requests-per-minute
	BLACKLIST_DURATION      → --blacklist-duration
	LOG_FILE                → --log-file
	LOG_LEVEL               → --log-level

CLI flags take precedence over environment variables. main loads a .env
file into the environment before parsing.

# Validation

ParseFlags returns an error when:

  - the database type is not sqlite or postgres
  - postgres is selected without a DATABASE_URL
  - the port, request budget, or penalty window is out of range
  - the log level is unknown
*/
package cliparse
