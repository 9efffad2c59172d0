package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/urfave/cli"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

var configFlags = []cli.Flag{
	cli.StringFlag{Name: "config", Value: "", Usage: "JSON configuration file, defaults apply when empty"},
	cli.StringFlag{Name: "schema", Value: "", Usage: "JSON schema overriding the embedded one"},
	cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
}

func main() {
	if err := makeapp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = "flock"
	app.Usage = "Fish schooling over a procedural reef"
	app.Flags = configFlags
	app.Action = runAction

	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "Open the top-down viewer",
			Flags:  configFlags,
			Action: runAction,
		},
		{
			Name:  "headless",
			Usage: "Simulate without a window and print where the school ended up",
			Flags: append([]cli.Flag{
				cli.IntFlag{Name: "ticks", Value: 600, Usage: "Number of ticks to simulate"},
			}, configFlags...),
			Action: headlessAction,
		},
	}
	return app
}

func loadConfig(c *cli.Context) (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := simulation.LoadConfig(path, c.String("schema"))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.Bool("debug") {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	logger := cfg.Logger(os.Stdout)
	ctx := context.Background()

	system, err := actor.NewActorSystem("FlockWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to create actor system: %w", err), 1)
	}
	if err := system.Start(ctx); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to start actor system: %w", err), 1)
	}
	defer func() { _ = system.Stop(ctx) }()

	game, err := simulation.NewGame(ctx, cfg, system, logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	ebiten.SetWindowSize(cfg.Viewer.ScreenWidth, cfg.Viewer.ScreenHeight)
	ebiten.SetWindowTitle("Flock: fish over the reef")
	if err := ebiten.RunGame(game); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func headlessAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	logger := cfg.Logger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := simulation.RunHeadless(ctx, cfg, c.Int("ticks"), logger)
	logger.Infof("final state: %s", summary)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}
