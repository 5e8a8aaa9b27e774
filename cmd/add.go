package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/chronoq/chronoq/cmd/common"
	"github.com/urfave/cli"
)

var (
	addAt      string
	addIn      string
	addMessage string
	addCron    string

	addFlags = append([]cli.Flag{
		cli.StringFlag{
			Name:        "at, a",
			Usage:       "absolute deadline in RFC 3339 form (e.g. 2026-08-30T17:00:00Z)",
			Destination: &addAt,
		},
		cli.StringFlag{
			Name:        "in, i",
			Usage:       "relative deadline as a duration (e.g. 90s, 3m, 1h30m)",
			Destination: &addIn,
		},
		cli.StringFlag{
			Name:        "message, m",
			Usage:       "payload reported back when the timer fires",
			Destination: &addMessage,
		},
		cli.StringFlag{
			Name:        "cron, c",
			Usage:       "cron expression making the timer recurring",
			Destination: &addCron,
		},
	}, connFlags...)
)

func add(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no timer id provided"),
		)
	} else if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	at, err := parseDeadline(addAt, addIn)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	if at.IsZero() && addCron == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no deadline provided: use --at, --in or --cron"),
		)
	}
	client, err := dialDaemon(context.Background())
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "connect", err)
		return nil
	}
	defer client.Close()
	res, err := client.AddTimer(context.Background(), id, addMessage, at, addCron)
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "timer_add", err)
		return nil
	}
	fmt.Printf("Scheduled %q for %s\n", res.ID, res.At.Local().Format("2006-01-02 15:04:05"))
	return nil
}
