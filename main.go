package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/soocke/pv-viewer-go/app"
	"github.com/soocke/pv-viewer-go/config"
	"github.com/soocke/pv-viewer-go/domain/imagefile"
)

func main() {
	var cli config.ChannelNames
	flag.StringVar(&cli.ArrayPrefix, "p", "", "array channel prefix (short)")
	flag.StringVar(&cli.ArrayPrefix, "prefix", "", "array channel prefix, e.g. SIM:image1:")
	flag.StringVar(&cli.WidthSuffix, "w", "", "width channel suffix (short)")
	flag.StringVar(&cli.WidthSuffix, "width-suffix", "", "width channel suffix, e.g. ArraySize0_RBV")
	flag.StringVar(&cli.HeightSuffix, "a", "", "height channel suffix (short)")
	flag.StringVar(&cli.HeightSuffix, "height-suffix", "", "height channel suffix, e.g. ArraySize1_RBV")
	var pvOnly bool
	flag.BoolVar(&pvOnly, "i", false, "plot the live channel only (short)")
	flag.BoolVar(&pvOnly, "pv", false, "plot the live channel only, without the file viewer")
	cfgPath := flag.String("config", "config.json", "path to the JSON config file")
	defaultsPath := flag.String("defaults", "defaults.yml", "path to the channel defaults file")
	broker := flag.String("broker", "", "MQTT broker address; overrides the config file")
	simulate := flag.Bool("sim", false, "publish a synthetic detector image on the live channels")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if *debugFlag {
		cfg.Debug = true
	}
	if *broker != "" {
		cfg.Broker = *broker
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", err)
	}

	channels, err := config.ResolveChannels(cli, os.Getenv, *defaultsPath)
	if err != nil {
		var ce *config.ConfigError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.Error())
		}
		logger.Error("resolve channel names", "error", err)
		os.Exit(2)
	}

	var files []string
	for _, p := range flag.Args() {
		if !imagefile.Supported(p) {
			logger.Warn("skipping unsupported file", "path", p)
			continue
		}
		files = append(files, p)
	}
	logger.Info("starting", "array", channels.ArrayChannel(), "width", channels.WidthChannel(),
		"height", channels.HeightChannel(), "files", len(files), "pv_only", pvOnly, "broker", cfg.Broker)

	c := app.BuildContainer(cfg, *cfgPath, logger, channels, files, *simulate)
	application := app.NewApp(c, app.Options{Title: "PV Viewer", Width: 900, Height: 860, PVOnly: pvOnly})
	application.Start()
}
