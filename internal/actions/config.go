package actions

import (
	"fmt"
	"strings"

	"stacked.dev/st/internal/config"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// ConfigListAction prints the effective configuration
func ConfigListAction(ctx *runtime.Context) error {
	cfg := ctx.Config

	lines := []string{fmt.Sprintf("%s: %s", style.ColorCyan("trunk"), cfg.TrunkName())}
	if trunks := cfg.AllTrunks(); len(trunks) > 1 {
		lines = append(lines, fmt.Sprintf("%s: %s", style.ColorCyan("trunks"), strings.Join(trunks[1:], ", ")))
	}
	for _, key := range config.Keys {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", style.ColorCyan(key), value))
	}

	ctx.Splog.Page(strings.Join(lines, "\n"))
	ctx.Splog.Newline()
	return nil
}

// ConfigGetAction prints one configuration value
func ConfigGetAction(ctx *runtime.Context, key string) error {
	value, err := ctx.Config.Get(key)
	if err != nil {
		return err
	}
	ctx.Splog.Page(value + "\n")
	return nil
}

// ConfigSetAction changes one configuration value
func ConfigSetAction(ctx *runtime.Context, key, value string) error {
	return withLock(ctx, func() error {
		if err := config.SetValue(ctx.StateDir, key, value); err != nil {
			return err
		}
		if err := ctx.ReloadConfig(); err != nil {
			return err
		}
		effective, _ := ctx.Config.Get(key)
		ctx.Splog.Info("Set %s to %s.", style.ColorCyan(key), effective)
		return nil
	})
}
