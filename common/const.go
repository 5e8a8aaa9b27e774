// Package common holds the wire types and method names shared between the
// chronoq daemon, the client library, and the CLI.
package common

// JSON-RPC method names exposed by the daemon.
const (
	MethodTimerAdd        = "timer.add"
	MethodTimerCancel     = "timer.cancel"
	MethodTimerCancelAt   = "timer.cancelAt"
	MethodTimerReschedule = "timer.reschedule"
	MethodTimerList       = "timer.list"
	MethodSystemVersion   = "system.getVersion"
	MethodSystemShutdown  = "system.shutdown"
)

// DefaultPort is the TCP port the daemon listens on when none is given.
const DefaultPort = 4316

// DefaultHost is the interface the daemon binds to. The daemon is an
// in-process scheduler with a local control surface, not a network service.
const DefaultHost = "127.0.0.1"
