package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys shared by environment variables and the defaults file.
const (
	KeyArrayPrefix  = "ARRAY_PREFIX"
	KeyWidthSuffix  = "WIDTH_SUFFIX"
	KeyHeightSuffix = "HEIGHT_SUFFIX"
)

// ChannelNames locates the three channels of a live detector image. Width and
// height suffixes are appended to the array prefix, e.g. "ArraySize0_RBV".
type ChannelNames struct {
	ArrayPrefix  string `yaml:"ARRAY_PREFIX"`
	WidthSuffix  string `yaml:"WIDTH_SUFFIX"`
	HeightSuffix string `yaml:"HEIGHT_SUFFIX"`
}

func (n ChannelNames) ArrayChannel() string  { return n.ArrayPrefix + "ArrayData" }
func (n ChannelNames) WidthChannel() string  { return n.ArrayPrefix + n.WidthSuffix }
func (n ChannelNames) HeightChannel() string { return n.ArrayPrefix + n.HeightSuffix }

// ConfigError lists the channel settings no source provided.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s not defined; set them with command-line flags (-p, -w, -a), "+
		"environment variables or the defaults.yml file", strings.Join(e.Missing, ", "))
}

// ResolveChannels fills each name from, in order: cli, the environment, then
// the YAML defaults file at defaultsPath (skipped when absent). getenv is
// usually os.Getenv.
func ResolveChannels(cli ChannelNames, getenv func(string) string, defaultsPath string) (ChannelNames, error) {
	var file ChannelNames
	if defaultsPath != "" {
		d, err := LoadDefaults(defaultsPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return ChannelNames{}, err
		}
		file = d
	}
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	out := ChannelNames{
		ArrayPrefix:  first(cli.ArrayPrefix, getenv(KeyArrayPrefix), file.ArrayPrefix),
		WidthSuffix:  first(cli.WidthSuffix, getenv(KeyWidthSuffix), file.WidthSuffix),
		HeightSuffix: first(cli.HeightSuffix, getenv(KeyHeightSuffix), file.HeightSuffix),
	}
	var missing []string
	if out.ArrayPrefix == "" {
		missing = append(missing, KeyArrayPrefix)
	}
	if out.WidthSuffix == "" {
		missing = append(missing, KeyWidthSuffix)
	}
	if out.HeightSuffix == "" {
		missing = append(missing, KeyHeightSuffix)
	}
	if len(missing) > 0 {
		return out, &ConfigError{Missing: missing}
	}
	return out, nil
}

// LoadDefaults reads a defaults.yml file.
func LoadDefaults(path string) (ChannelNames, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChannelNames{}, err
	}
	var n ChannelNames
	if err := yaml.Unmarshal(data, &n); err != nil {
		return ChannelNames{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return n, nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
