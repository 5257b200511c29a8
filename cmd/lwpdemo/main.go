// Command lwpdemo runs small programs on the LWP runtime.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	lwp "github.com/Swind/go-lwp"
	"github.com/Swind/go-lwp/core"
)

func main() {
	app := &cli.App{
		Name:  "lwpdemo",
		Usage: "Run cooperative LWP demos",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML runtime config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log_level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			pingPongCommand(),
			parkTimeoutCommand(),
			metricsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the runtime config from the global flags.
func loadConfig(c *cli.Context) (*lwp.Config, error) {
	cfg := lwp.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = lwp.LoadConfigFile(path); err != nil {
			return nil, err
		}
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	cfg.Logger = core.NewDefaultLogger()
	return cfg, cfg.Validate()
}

// runToCompletion parks the main thread in short slices until every other
// thread exited.
func runToCompletion(rt *lwp.Runtime) error {
	for rt.Stats().Live > 1 {
		err := rt.ParkTimeout(10*time.Millisecond, lwp.NoID)
		if err != nil && !errors.Is(err, lwp.ErrTimedOut) {
			return err
		}
	}
	return nil
}
