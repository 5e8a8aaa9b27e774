package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/chronoq/chronoq/cmd/common"
	"github.com/urfave/cli"
)

var (
	showFired bool

	listFlags = append([]cli.Flag{
		cli.BoolFlag{
			Name:        "fired, f",
			Usage:       "use this flag to include recently fired timers (default: false)",
			Destination: &showFired,
		},
	}, connFlags...)
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := dialDaemon(context.Background())
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "connect", err)
		return nil
	}
	defer client.Close()
	l, err := client.List(context.Background(), showFired)
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "get_list", err)
		return nil
	}
	if len(l.Timers) == 0 && len(l.Fired) == 0 {
		fmt.Println("chronoq: no timers found")
		return nil
	}
	if len(l.Timers) > 0 {
		txt := "Pending timers:"
		txt += "\n\n-----------------------------------------------------------------------"
		txt += "\n|Num|          Id          |      Deadline       |  Left   |   Cron    |"
		txt += "\n|---|----------------------|---------------------|---------|-----------|"
		now := time.Now()
		for i, t := range l.Timers {
			left := t.At.Sub(now).Round(time.Second)
			if left < 0 {
				left = 0
			}
			txt += fmt.Sprintf("\n| %d | %s | %s | %s | %s |",
				i+1,
				beaut(clip(t.ID, 20), 20),
				t.At.Local().Format("2006-01-02 15:04:05"),
				beaut(left.String(), 7),
				beaut(clip(t.Cron, 9), 9),
			)
		}
		txt += "\n-----------------------------------------------------------------------"
		fmt.Println(txt)
	}
	if showFired && len(l.Fired) > 0 {
		txt := "\nRecently fired:"
		txt += "\n\n--------------------------------------------------------------"
		txt += "\n|Num|          Id          |      Fired at       |  Lateness  |"
		txt += "\n|---|----------------------|---------------------|------------|"
		for i, f := range l.Fired {
			late := f.FiredAt.Sub(f.At).Round(time.Millisecond)
			txt += fmt.Sprintf("\n| %d | %s | %s | %s |",
				i+1,
				beaut(clip(f.ID, 20), 20),
				f.FiredAt.Local().Format("2006-01-02 15:04:05"),
				beaut(late.String(), 10),
			)
		}
		txt += "\n--------------------------------------------------------------"
		fmt.Println(txt)
	}
	return nil
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func beaut(s string, n int) (b string) {
	n1 := len(s)
	if n1 >= n {
		return s
	}
	x := n - n1
	x1 := x / 2
	w := string(
		replic(' ', x1),
	)
	b = w
	b += s
	b += w
	if x%2 != 0 {
		b += " "
	}
	return
}

func replic[aT any](v aT, n int) []aT {
	a := make([]aT, n)
	for i := range a {
		a[i] = v
	}
	return a
}
