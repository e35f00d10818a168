package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledpanel/internal/geometry"
	"github.com/coreman2200/funtimes-ledpanel/internal/panel"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, geometry.Panel8x32, c.Geom())

	w := c.Wire()
	assert.Equal(t, "sim", w.Driver)
	assert.Equal(t, 256, w.NumPixels)

	col, err := c.TextColor()
	require.NoError(t, err)
	assert.Equal(t, panel.RGB(0xFF, 0x20, 0x00), col)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: bitbang\npin: GPIO21\nbrightness: 200\ntext: abc\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bitbang", c.Driver)
	assert.Equal(t, "GPIO21", c.Pin)
	assert.Equal(t, 200, c.Brightness)
	assert.Equal(t, "abc", c.Text)
	assert.Equal(t, 20, c.FPS)
	assert.Equal(t, "column_zigzag", c.Layout)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	c := Default()
	c.Layout = "row_serpentine"
	c.Geometry = Geometry{TileW: 8, TileH: 8, TilesX: 2, TilesY: 2}
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	opts, err := got.PanelOpts()
	require.NoError(t, err)
	assert.Equal(t, 16, opts.Geometry.Width())
	assert.IsType(t, geometry.RowSerpentine{}, opts.Mapper)
}

func TestValidate(t *testing.T) {
	for name, mut := range map[string]func(*Config){
		"driver":     func(c *Config) { c.Driver = "pwm" },
		"pin":        func(c *Config) { c.Driver = "stream"; c.Pin = "" },
		"brightness": func(c *Config) { c.Brightness = 256 },
		"fps":        func(c *Config) { c.FPS = 0 },
		"clock":      func(c *Config) { c.ClockMHz = -1 },
		"layout":     func(c *Config) { c.Layout = "spiral" },
		"geometry":   func(c *Config) { c.Geometry.TilesX = 0 },
		"color":      func(c *Config) { c.Color = "red" },
	} {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mut(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fps: -3\n"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("fps: [1\n"), 0644))
	_, err = Load(garbage)
	assert.Error(t, err)
}
