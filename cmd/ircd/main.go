// Command ircd is the process entrypoint: parse flags, assemble a
// config.Config, construct the façade, and run its accept/tick loop.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/coreircd/ircd/config"
	"github.com/coreircd/ircd/mclock"
	"github.com/coreircd/ircd/server"
	"github.com/coreircd/ircd/transport"
)

func main() {
	app := cli.NewApp()
	app.Name = "ircd"
	app.Usage = "a minimal IRC daemon core"
	app.Flags = []cli.Flag{
		config.ClientPortFlag,
		config.ServerPortFlag,
		config.ServerNameFlag,
		config.NetworkNameFlag,
		config.ServerTokenFlag,
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("ircd exited")
	}
}

func run(c *cli.Context) error {
	cfg := config.FromCLIContext(c)

	srv, err := server.New(cfg, transport.TCPDialer{Timeout: 10 * time.Second})
	if err != nil {
		return fmt.Errorf("constructing façade: %w", err)
	}

	srv.Log.WithField("clientport", cfg.ClientPort).
		WithField("serverport", cfg.ServerPort).
		WithField("network", cfg.NetworkName).
		Info("ircd listening")

	bootTS := time.Now().Unix()
	const pollTimeout = 200 * time.Millisecond
	for {
		srv.PollAccept(pollTimeout)
		srv.PollIO(pollTimeout)
		srv.Tick(mclock.Now(), bootTS, time.Now().Unix())
	}
}
