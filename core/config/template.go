package config

import (
	"fmt"
	"os"
)

// DefaultConfigTOML is the starter configuration written by the init command.
const DefaultConfigTOML = `[cache]
directory = ".emoji-cache"
ttl_hours = 24
clean_on_build = false

[icons]
directory = "overrides/assets/emojis"

[emojis]
namespace_prefix_required = false
max_size_kb = 500
download_timeout = 30
prefix_format = "namespace-name"

[sync]
workers = 4
retries = 2
list_retries = 2
fail_on_error = true

[[providers]]
type = "slack"
namespace = "slack"
token_env = "SLACK_BOT_TOKEN"
enabled = true

[[providers]]
type = "discord"
namespace = "discord"
token_env = "DISCORD_BOT_TOKEN"
tenant_env = "DISCORD_GUILD_ID"
enabled = false
`

// WriteDefault writes the starter configuration to path, refusing to
// overwrite an existing file.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}
	return os.WriteFile(path, []byte(DefaultConfigTOML), 0o644)
}
