package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("ledpanel")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledpanel",
		Short:         "Drive an 8x32 WS2812 tile panel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("verbose"); v {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
	f := root.PersistentFlags()
	f.StringP("config", "c", "config.yaml", "path to config.yaml")
	f.String("driver", "", "driver: bitbang | stream | spi | sim | console")
	f.String("pin", "", "data pin, e.g. GPIO18")
	f.String("spi-port", "", "SPI port name; empty picks the first")
	f.Int("clock-mhz", 0, "busy-wait calibration for the bitbang driver")
	f.Int("brightness", -1, "global brightness 0..255")
	f.String("layout", "", "tile wiring: column_zigzag | row_serpentine | row_linear")
	f.BoolP("verbose", "v", false, "debug logging")

	root.AddCommand(newRunCmd(), newSelftestCmd(), newMapCmd())
	return root
}
