// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logging installs the process-wide slog logger.
//
// Records fan out through slog-multi to the console (text on a terminal,
// JSON when piped) and, optionally, to an append-only JSON log file.
package logging
