package cmd

import (
	"fmt"

	"github.com/achilleasa/orrery/config"
	"github.com/urfave/cli"
)

// Print the effective settings as TOML, or write them to --out.
func DumpConfig(ctx *cli.Context) error {
	setupLogging(ctx)

	s, _, err := loadSettings(ctx.String("config"))
	if err != nil {
		return err
	}

	if out := ctx.String("out"); out != "" {
		if err = config.Save(out, s); err != nil {
			return err
		}
		logger.Noticef("wrote settings to %s", out)
		return nil
	}

	data, err := config.Encode(s)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
