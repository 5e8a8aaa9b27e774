package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/chronoq/chronoq/pkg/logger"
	"github.com/chronoq/chronoq/pkg/timeq"
	"github.com/urfave/cli"
)

// demo drives the event queue directly, without a daemon. Four events are
// scheduled, then one is cancelled by value, every event at one instant is
// cancelled, one value is rewritten in place, and one event is pushed past
// the stop instant so it never fires.
func demo(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	l := logger.NewStandardLogger(log.Default())
	defer l.Close()

	start := time.Now()
	q := timeq.New(func(at time.Time, value int) {
		fmt.Printf("fired value=%d scheduled=+%s late=%s\n",
			value,
			at.Sub(start).Round(time.Millisecond),
			time.Since(at).Round(time.Millisecond),
		)
	}, &timeq.Opts{Logger: l})

	q.Add(start.Add(3*time.Second), 1)
	q.Add(start.Add(1*time.Second), 2)
	q.Add(start.Add(2*time.Second), 3)
	q.Add(start.Add(4*time.Second), 4)

	// value 2 never fires
	q.Remove(2)
	// nor does anything scheduled for +2s
	q.RemoveAt(start.Add(2 * time.Second))
	// the +4s event now carries value 5
	q.UpdateValue(start.Add(4*time.Second), 5)
	// value 1 moves past the stop instant, so it is discarded on Stop
	q.Reschedule(start.Add(10*time.Second), 1)

	time.Sleep(6 * time.Second)
	q.Stop()
	fmt.Println("queue stopped; pending events discarded:", q.Len())
	return nil
}
