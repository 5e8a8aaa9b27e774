package cmd

import (
	"context"
	"fmt"

	"github.com/chronoq/chronoq/cmd/common"
	"github.com/urfave/cli"
)

func stopDaemon(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := dialDaemon(context.Background())
	if err != nil {
		common.PrintRuntimeErr(ctx, "stop", "connect", err)
		return nil
	}
	defer client.Close()
	if err := client.Shutdown(context.Background()); err != nil {
		common.PrintRuntimeErr(ctx, "stop", "system_shutdown", err)
		return nil
	}
	fmt.Println("Daemon shutdown requested")
	return nil
}
