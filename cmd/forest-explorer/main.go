package main

import (
	"os"

	"github.com/urfave/cli"
)

var Version = "dev"

func main() {
	ctl := newApp()

	if err := ctl.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func newApp() *cli.App {
	ctl := cli.NewApp()
	ctl.Name = "forest-explorer"
	ctl.Version = Version
	ctl.Usage = "Query a Filecoin node for its network name and version"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = newCommands()
	return ctl
}
