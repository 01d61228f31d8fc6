package config

import "github.com/BurntSushi/toml"

// Load reads a Config from a TOML file at path, starting from Default()
// so any knob the file omits keeps its documented default rather than
// the TOML zero value.
func Load(path string) (Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
