// Package config loads tally's configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tally/config.toml
//  3. If the file doesn't exist, start from Default()
//  4. Fields missing or blank in the file keep their defaults
//  5. TALLY_SERVER, TALLY_ROLE, TALLY_SESSION and TALLY_LOG_LEVEL override
//     whatever the file said
//
// The command loads a .env file from the working directory before calling
// Load, so the overrides can live there too.
//
// # Default Values
//
//   - server: 127.0.0.1:5001
//   - role: child
//   - log_dir: ~/.local/share/tally/logs (tally.log inside it)
//   - log_level: info, log_format: text
//   - request_timeout: 10 seconds
//   - refresh_seconds: 30
//   - max_in_flight: 0 (no limit on concurrent row updates)
//   - reset_policy: after_settle
//
// # TOML Format
//
//	server = "127.0.0.1:5001"
//	role = "parent"
//	session_cookie = "eyJ1c2VyIjoi..."
//	log_dir = "~/.local/share/tally/logs"
//	request_timeout = 10
//	reset_policy = "full_success"
//
// The role is never derived from the server. It decides locally which cells
// are editable and whether rows can be deleted; the server enforces its own
// checks regardless.
//
// # Validation
//
// Load does not validate. Validate reports every bad field in a single error
// so a broken file can be fixed in one pass.
package config
