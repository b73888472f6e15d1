package configstore

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/LinusChen-yf/adeploy/internal/apperrors"
)

// ParseServerConfig reads and decodes a server TOML document from path.
func ParseServerConfig(path string) (*ServerConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapConfig(err, "failed to read server config '%s'", path)
	}
	var cfg ServerConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, apperrors.WrapConfig(err, "failed to parse server config '%s'", path)
	}
	return &cfg, nil
}

// ParseClientConfig reads and decodes a client TOML document from path.
func ParseClientConfig(path string) (*ClientConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapConfig(err, "failed to read client config '%s'", path)
	}
	var cfg ClientConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, apperrors.WrapConfig(err, "failed to parse client config '%s'", path)
	}
	return &cfg, nil
}

// ResolveRemote finds the RemoteEntry for host, falling back to the
// literal "default" key, and fails if neither is present (spec §4.9).
func ResolveRemote(cfg *ClientConfig, host string) (RemoteEntry, error) {
	if entry, ok := cfg.Remotes[host]; ok {
		return entry, nil
	}
	if entry, ok := cfg.Remotes[DefaultRemoteKey]; ok {
		return entry, nil
	}
	return RemoteEntry{}, apperrors.NewConfig("no remote entry for host '%s' and no 'default' fallback configured", host)
}
