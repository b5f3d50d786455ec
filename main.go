package main

import (
	"os"

	"github.com/achilleasa/orrery/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "orrery"
	app.Usage = "render views of a hierarchical universe of stars, planets and moons"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, notice, warning, error)",
		},
	}

	sizeFlags := func(width, height int) []cli.Flag {
		return []cli.Flag{
			cli.IntFlag{
				Name:  "width",
				Value: width,
				Usage: "frame width",
			},
			cli.IntFlag{
				Name:  "height",
				Value: height,
				Usage: "frame height",
			},
		}
	}
	timeRateFlag := cli.Float64Flag{
		Name:  "time-rate",
		Value: 0,
		Usage: "simulated days per second",
	}

	app.Commands = []cli.Command{
		{
			Name:   "render",
			Usage:  "render the universe",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame to a PNG image",
					Description: `
Render a single frame of the universe as seen from an observer placed near
the target object and write it to a PNG image. Frame statistics are printed
once the frame is complete.`,
					Flags: append(append(sizeFlags(1024, 768), cmd.RenderFlags()...),
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "terminal",
					Usage: "render an animated view on the terminal",
					Description: `
Render the universe as text. The settings file, if any, is watched and
changes are applied between frames.`,
					Flags:  append(cmd.RenderFlags(), timeRateFlag),
					Action: cmd.RenderTerminal,
				},
				{
					Name:  "interactive",
					Usage: "render interactive view of the universe in an OpenGL window",
					Description: `
Open a window with an interactive view of the universe. Use the arrow keys to
move, drag with the mouse to look around and scroll to zoom. Tab toggles the
statistics overlay.`,
					Flags:  append(append(sizeFlags(1024, 768), cmd.RenderFlags()...), timeRateFlag),
					Action: cmd.RenderInteractive,
				},
			},
		},
		{
			Name:   "flags",
			Usage:  "list render flags, label categories and star styles",
			Action: cmd.ListFlags,
		},
		{
			Name:      "orbits",
			Usage:     "list the orbiting objects of a universe",
			ArgsUsage: "[universe.yaml]",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "time",
					Usage: "simulation time in days",
				},
			},
			Action: cmd.ListOrbits,
		},
		{
			Name:  "config",
			Usage: "print the effective render settings as TOML",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "settings file to load",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "write the settings to this file instead of stdout",
				},
			},
			Action: cmd.DumpConfig,
		},
	}

	app.Run(os.Args)
}
