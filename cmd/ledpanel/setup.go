package main

import (
	"errors"
	"io/fs"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-ledpanel/internal/config"
)

// loadConfig reads --config, falling back to defaults when the file does not
// exist, then applies any flags given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", path).Msg("no config file; using defaults")
		cfg = config.Default()
		path = ""
	case err != nil:
		return nil, "", err
	}

	if flags.Changed("driver") {
		cfg.Driver, _ = flags.GetString("driver")
	}
	if flags.Changed("pin") {
		cfg.Pin, _ = flags.GetString("pin")
	}
	if flags.Changed("spi-port") {
		cfg.SPIPort, _ = flags.GetString("spi-port")
	}
	if flags.Changed("clock-mhz") {
		cfg.ClockMHz, _ = flags.GetInt("clock-mhz")
	}
	if flags.Changed("brightness") {
		cfg.Brightness, _ = flags.GetInt("brightness")
	}
	if flags.Changed("layout") {
		cfg.Layout, _ = flags.GetString("layout")
	}
	if flags.Lookup("text") != nil && flags.Changed("text") {
		cfg.Text, _ = flags.GetString("text")
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.FPS, _ = flags.GetInt("fps")
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	return cfg, path, cfg.Validate()
}
