package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/chronoq/chronoq/cmd/common"
	"github.com/urfave/cli"
)

var (
	resAt string
	resIn string

	rescheduleFlags = append([]cli.Flag{
		cli.StringFlag{
			Name:        "at, a",
			Usage:       "new absolute deadline in RFC 3339 form",
			Destination: &resAt,
		},
		cli.StringFlag{
			Name:        "in, i",
			Usage:       "new relative deadline as a duration",
			Destination: &resIn,
		},
	}, connFlags...)
)

func reschedule(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no timer id provided"),
		)
	} else if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	at, err := parseDeadline(resAt, resIn)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	if at.IsZero() {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no deadline provided: use --at or --in"),
		)
	}
	client, err := dialDaemon(context.Background())
	if err != nil {
		common.PrintRuntimeErr(ctx, "reschedule", "connect", err)
		return nil
	}
	defer client.Close()
	ok, err := client.Reschedule(context.Background(), id, at)
	if err != nil {
		common.PrintRuntimeErr(ctx, "reschedule", "timer_reschedule", err)
		return nil
	}
	if ok {
		fmt.Printf("Rescheduled %q for %s\n", id, at.Local().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("No pending timer %q\n", id)
	}
	return nil
}
