package util

import (
	"gopkg.in/ini.v1"
)

// Ini loads a flat ini file into a key-value map.
func Ini(ininame string) (map[string]string, error) {
	cfg, err := ini.Load(ininame)
	if err != nil {
		return nil, err
	}
	return cfg.Section("").KeysHash(), nil
}
