package config

import "fmt"

// Validate checks a resolved Config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be in range [0, 65535]")
	}
	if cfg.RPCPort < 0 || cfg.RPCPort > 65535 {
		return fmt.Errorf("rpc-port must be in range [0, 65535]")
	}
	if cfg.Port == cfg.RPCPort {
		return fmt.Errorf("port and rpc-port must differ")
	}
	return nil
}
