package theme

import (
	"fmt"
	"strconv"
	"time"
)

// PluginInfo is version information host uses to install and upgrade the
// theme.
type PluginInfo struct {
	Component string
	// YYYYMMDDXX
	Version int64
	// minimum host version
	Requires     int64
	Dependencies map[string]int64
}

// Plugin returns metadata of theme component.
func Plugin(component string) PluginInfo {
	return PluginInfo{
		Component: component,
		Version:   2021012500,
		Requires:  2020061500,
		Dependencies: map[string]int64{
			"theme_boost": 2020061500,
		},
	}
}

// Release returns date part of the version.
func (p PluginInfo) Release() (time.Time, error) {
	s := strconv.FormatInt(p.Version, 10)
	if len(s) != 10 {
		return time.Time{}, fmt.Errorf("malformed version %d", p.Version)
	}
	return time.Parse("20060102", s[:8])
}

// Satisfies checks host version and installed plugins against requirements.
func (p PluginInfo) Satisfies(host int64, installed map[string]int64) error {
	if host < p.Requires {
		return fmt.Errorf("%s requires host version %d, got %d", p.Component, p.Requires, host)
	}
	for name, want := range p.Dependencies {
		got, ok := installed[name]
		if !ok {
			return fmt.Errorf("%s requires %s which is not installed", p.Component, name)
		}
		if got < want {
			return fmt.Errorf("%s requires %s version %d, got %d", p.Component, name, want, got)
		}
	}
	return nil
}
