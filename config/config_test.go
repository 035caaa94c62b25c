package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if cfg.TickMS != DefaultConfig().TickMS {
		t.Fatalf("expected defaults got=%+v", cfg)
	}
}

func TestSaveLoad_ClampsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	cfg := DefaultConfig()
	cfg.Broker = "localhost:1883"
	cfg.TickMS = 1
	cfg.QoS = 7
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Broker != "localhost:1883" || got.TickMS != 10 || got.QoS != 0 {
		t.Fatalf("unexpected config %+v", got)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	_ = os.WriteFile(path, []byte("{"), 0o644)
	cfg, err := Load(path)
	if err == nil || cfg == nil {
		t.Fatalf("expected defaults with error, got cfg=%v err=%v", cfg, err)
	}
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolveChannels_Priority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yml")
	yml := "ARRAY_PREFIX: \"FILE:image1:\"\nWIDTH_SUFFIX: ArraySize0_RBV\nHEIGHT_SUFFIX: ArraySize1_RBV\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ResolveChannels(
		ChannelNames{ArrayPrefix: "CLI:image1:"},
		env(map[string]string{KeyArrayPrefix: "ENV:", KeyWidthSuffix: "W_ENV"}),
		path,
	)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ArrayPrefix != "CLI:image1:" || got.WidthSuffix != "W_ENV" || got.HeightSuffix != "ArraySize1_RBV" {
		t.Fatalf("unexpected resolution %+v", got)
	}
	if got.ArrayChannel() != "CLI:image1:ArrayData" || got.HeightChannel() != "CLI:image1:ArraySize1_RBV" {
		t.Fatalf("channel names got=%s %s", got.ArrayChannel(), got.HeightChannel())
	}
}

func TestResolveChannels_MissingIsConfigError(t *testing.T) {
	_, err := ResolveChannels(ChannelNames{WidthSuffix: "W"}, env(nil), filepath.Join(t.TempDir(), "none.yml"))
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError got=%v", err)
	}
	if len(ce.Missing) != 2 || ce.Missing[0] != KeyArrayPrefix || ce.Missing[1] != KeyHeightSuffix {
		t.Fatalf("missing got=%v", ce.Missing)
	}
	msg := ce.Error()
	if !strings.Contains(msg, "ARRAY_PREFIX") || !strings.Contains(msg, "environment") || !strings.Contains(msg, "defaults.yml") {
		t.Fatalf("message does not list mechanisms: %s", msg)
	}
}

func TestResolveChannels_BadDefaultsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yml")
	_ = os.WriteFile(path, []byte("ARRAY_PREFIX: [unterminated"), 0o644)
	if _, err := ResolveChannels(ChannelNames{}, nil, path); err == nil {
		t.Fatalf("expected parse error")
	}
}
