package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/chronoq/chronoq/cmd/common"
	"github.com/urfave/cli"
)

var (
	cancelAt string
	cancelIn string

	cancelFlags = append([]cli.Flag{
		cli.StringFlag{
			Name:        "at, a",
			Usage:       "cancel every timer scheduled for this RFC 3339 instant",
			Destination: &cancelAt,
		},
		cli.StringFlag{
			Name:        "in, i",
			Usage:       "cancel every timer scheduled for now plus this duration",
			Destination: &cancelIn,
		},
	}, connFlags...)
)

func cancel(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	at, err := parseDeadline(cancelAt, cancelIn)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	if id == "" && at.IsZero() {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no timer id or --at instant provided"),
		)
	}
	client, err := dialDaemon(context.Background())
	if err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "connect", err)
		return nil
	}
	defer client.Close()
	if !at.IsZero() {
		n, err := client.CancelAt(context.Background(), at)
		if err != nil {
			common.PrintRuntimeErr(ctx, "cancel", "timer_cancel_at", err)
			return nil
		}
		fmt.Printf("Cancelled %d timer(s)\n", n)
		return nil
	}
	ok, err := client.Cancel(context.Background(), id)
	if err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "timer_cancel", err)
		return nil
	}
	if ok {
		fmt.Printf("Cancelled %q\n", id)
	} else {
		fmt.Printf("No pending timer %q\n", id)
	}
	return nil
}
