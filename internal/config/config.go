// Package config is the YAML file describing one panel installation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-ledpanel/internal/geometry"
	"github.com/coreman2200/funtimes-ledpanel/internal/panel"
	"github.com/coreman2200/funtimes-ledpanel/internal/wire"
)

type Geometry struct {
	TileW  int `yaml:"tile_w"`
	TileH  int `yaml:"tile_h"`
	TilesX int `yaml:"tiles_x"`
	TilesY int `yaml:"tiles_y"`
}

type Config struct {
	Driver   string `yaml:"driver"` // "bitbang" | "stream" | "spi" | "sim" | "console"
	Pin      string `yaml:"pin"`
	SPIPort  string `yaml:"spi_port,omitempty"`
	ClockMHz int    `yaml:"clock_mhz"`

	Brightness int `yaml:"brightness"`
	FPS        int `yaml:"fps"`

	Geometry Geometry `yaml:"geometry"`
	Layout   string   `yaml:"layout"`

	Text    string `yaml:"text"`
	TextRow int    `yaml:"text_row"`
	Color   string `yaml:"color"`

	Addr string `yaml:"addr,omitempty"` // preview and metrics listener; empty disables
}

// Default is a simulated 8x32 panel scrolling a greeting.
func Default() *Config {
	return &Config{
		Driver:     "sim",
		Pin:        "GPIO18",
		ClockMHz:   16,
		Brightness: 64,
		FPS:        20,
		Geometry:   Geometry{TileW: 8, TileH: 8, TilesX: 4, TilesY: 1},
		Layout:     "column_zigzag",
		Text:       "HELLO",
		TextRow:    1,
		Color:      "#FF2000",
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "bitbang", "stream":
		if c.Pin == "" {
			return fmt.Errorf("driver %s needs a pin", c.Driver)
		}
	case "spi", "sim", "console":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		return fmt.Errorf("brightness %d outside 0..255", c.Brightness)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.ClockMHz < 0 {
		return fmt.Errorf("clock_mhz must not be negative, got %d", c.ClockMHz)
	}
	if _, err := c.Mapper(); err != nil {
		return err
	}
	if _, err := c.TextColor(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Geom() geometry.Geometry {
	return geometry.Geometry{
		TileW:  c.Geometry.TileW,
		TileH:  c.Geometry.TileH,
		TilesX: c.Geometry.TilesX,
		TilesY: c.Geometry.TilesY,
	}
}

// Mapper resolves Layout over the configured geometry.
func (c *Config) Mapper() (geometry.Mapper, error) {
	g := c.Geom()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return geometry.ByName(c.Layout, g)
}

func (c *Config) TextColor() (panel.Color, error) {
	return panel.ParseColor(c.Color)
}

func (c *Config) Wire() wire.Config {
	return wire.Config{
		Driver:    c.Driver,
		Pin:       c.Pin,
		SPIPort:   c.SPIPort,
		ClockMHz:  c.ClockMHz,
		NumPixels: c.Geom().Count(),
	}
}

// PanelOpts is the panel construction half of the config.
func (c *Config) PanelOpts() (*panel.Opts, error) {
	m, err := c.Mapper()
	if err != nil {
		return nil, err
	}
	return &panel.Opts{Geometry: c.Geom(), Mapper: m}, nil
}
