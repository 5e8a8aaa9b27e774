package cmd

import "time"

const (
	// DefaultShutdownTimeout bounds graceful daemon shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultDialTimeout bounds client connection attempts to the daemon.
	DefaultDialTimeout = 5 * time.Second
)

const DESCRIPTION = `
chronoq is a precise in-process timer daemon. It keeps a time-ordered
event queue, sleeps until the earliest deadline, and fires each timer
exactly once, in timestamp order. Timers can be one-shot or recurring
(cron), and can be cancelled or rescheduled at any point before firing.
`

const (
	DaemonDescription = `The daemon command starts the chronoq scheduling daemon
with its JSON-RPC control surface (HTTP POST on /rpc, WebSocket on /ws).

Example:
        chronoq daemon --port 4316

`
	AddDescription = `The add command schedules a named timer on the daemon.
The deadline is given either absolutely (--at, RFC 3339) or relatively
(--in, Go duration). With --cron the timer recurs; if no deadline is
given the next cron occurrence is used. Re-adding an existing id moves
the timer.

Example:
        chronoq add tea --in 3m --message "tea is ready"
        chronoq add nightly --cron "0 2 * * *"

`
	CancelDescription = `The cancel command cancels a pending timer by id, or —
with --at — every timer scheduled for exactly that instant. Cancelling
a timer that is not pending is not an error.

Example:
        chronoq cancel tea

`
	RescheduleDescription = `The reschedule command moves a pending timer to a
new deadline (--at or --in). Moving a timer earlier takes effect
immediately; the daemon never sleeps past the new deadline.

Example:
        chronoq reschedule tea --in 10m

`
	ListDescription = `The list command displays pending timers in firing order.
With --fired it also shows recently fired timers.

Example:
        chronoq list --fired

`
	WatchDescription = `The watch command renders a live countdown bar for every
pending timer and exits once all of them have fired.

Example:
        chronoq watch

`
	DemoDescription = `The demo command runs the event queue in-process, without
a daemon: it schedules four events, cancels one by value and one by
timestamp, rewrites one value, reschedules one event past the stop
instant, and prints each expiry as it happens.

`
	StopDescription = `The stop command asks a running daemon to shut down.

`
)
