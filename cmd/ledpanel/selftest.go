package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-ledpanel/internal/panel"
	"github.com/coreman2200/funtimes-ledpanel/internal/selftest"
)

func newSelftestCmd() *cobra.Command {
	var names []string
	for _, k := range selftest.Kinds {
		names = append(names, string(k))
	}
	cmd := &cobra.Command{
		Use:       "selftest <pattern>",
		Short:     "Step a wiring test pattern: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE:      runSelftest,
	}
	cmd.Flags().Duration("step", 50*time.Millisecond, "time each frame stays lit")
	return cmd
}

func runSelftest(cmd *cobra.Command, args []string) error {
	kind, err := selftest.ParseKind(args[0])
	if err != nil {
		return err
	}
	step, _ := cmd.Flags().GetDuration("step")
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := cfg.PanelOpts()
	if err != nil {
		return err
	}
	p, err := panel.Open(cfg.Wire(), opts)
	if err != nil {
		return err
	}
	defer p.Close()
	p.SetBrightness(uint8(cfg.Brightness))

	r, err := selftest.NewRunner(kind, p)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("test", string(kind)).Int("steps", r.Steps()).Str("panel", p.String()).Msg("self test")
	ticker := time.NewTicker(step)
	defer ticker.Stop()
	for i := 0; ; i++ {
		ok, err := r.Step()
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if !ok {
			break
		}
		log.Debug().Int("step", i).Msg("shown")
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	log.Info().Str("test", string(kind)).Msg("self test done")
	return nil
}
