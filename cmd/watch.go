package cmd

import (
	"context"
	"fmt"
	"time"

	cmdCommon "github.com/chronoq/chronoq/cmd/common"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
)

const watchRefresh = 120 * time.Millisecond

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := dialDaemon(context.Background())
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "watch", "connect", err)
		return nil
	}
	defer client.Close()
	l, err := client.List(context.Background(), false)
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "watch", "get_list", err)
		return nil
	}
	if len(l.Timers) == 0 {
		fmt.Println("chronoq: no pending timers to watch")
		return nil
	}

	start := time.Now()
	p := mpb.New(mpb.WithWidth(64), mpb.WithRefreshRate(watchRefresh))
	bars := make([]*mpb.Bar, len(l.Timers))
	for i, t := range l.Timers {
		total := t.At.Sub(start).Milliseconds()
		if total < 1 {
			total = 1
		}
		bars[i] = cmdCommon.InitCountdownBar(p, t.ID, total)
	}

	tick := time.NewTicker(watchRefresh)
	defer tick.Stop()
	for range tick.C {
		elapsed := time.Since(start).Milliseconds()
		done := true
		for _, bar := range bars {
			if bar.Completed() {
				continue
			}
			bar.SetCurrent(elapsed)
			if !bar.Completed() {
				done = false
			}
		}
		if done {
			break
		}
	}
	p.Wait()
	return nil
}
