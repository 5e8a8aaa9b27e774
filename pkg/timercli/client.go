// Package timercli is the client library for the chronoq daemon. It dials
// the daemon's WebSocket endpoint and speaks JSON-RPC 2.0 over it.
package timercli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"

	"github.com/chronoq/chronoq/common"
)

// wsChannel adapts a coder/websocket.Conn to the jrpc2 Channel interface.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// Client is a connected chronoq daemon client. It is safe for concurrent
// use; jrpc2 multiplexes calls over the single connection.
type Client struct {
	rpc *jrpc2.Client
}

// Dial connects to the daemon at addr (host:port). secret may be empty when
// the daemon runs without authentication.
func Dial(ctx context.Context, addr, secret string) (*Client, error) {
	u := "ws://" + addr + "/ws"
	opts := &cws.DialOptions{}
	if secret != "" {
		opts.HTTPHeader = http.Header{"Authorization": {"Bearer " + secret}}
	}
	conn, _, err := cws.Dial(ctx, u, opts)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	// The channel outlives the dial context: the connection is long-lived.
	ch := &wsChannel{conn: conn, ctx: context.Background()}
	return &Client{rpc: jrpc2.NewClient(ch, nil)}, nil
}

// AddTimer schedules (or moves) a named timer and returns its effective
// deadline.
func (c *Client) AddTimer(ctx context.Context, id, message string, at time.Time, cron string) (*common.AddResult, error) {
	var res common.AddResult
	err := c.rpc.CallResult(ctx, common.MethodTimerAdd, &common.AddParams{
		ID:      id,
		Message: message,
		At:      at,
		Cron:    cron,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Cancel cancels a timer by id; reports whether a timer was pending.
func (c *Client) Cancel(ctx context.Context, id string) (bool, error) {
	var res common.CancelResult
	err := c.rpc.CallResult(ctx, common.MethodTimerCancel, &common.CancelParams{ID: id}, &res)
	return res.Cancelled, err
}

// CancelAt cancels every timer scheduled for exactly the given instant and
// returns how many were cancelled.
func (c *Client) CancelAt(ctx context.Context, at time.Time) (int, error) {
	var res common.CancelAtResult
	err := c.rpc.CallResult(ctx, common.MethodTimerCancelAt, &common.CancelAtParams{At: at}, &res)
	return res.Cancelled, err
}

// Reschedule moves a pending timer to a new deadline; reports whether the
// timer was pending.
func (c *Client) Reschedule(ctx context.Context, id string, at time.Time) (bool, error) {
	var res common.RescheduleResult
	err := c.rpc.CallResult(ctx, common.MethodTimerReschedule, &common.RescheduleParams{ID: id, At: at}, &res)
	return res.Rescheduled, err
}

// List returns pending timers, plus the firing history when includeFired is
// set.
func (c *Client) List(ctx context.Context, includeFired bool) (*common.ListResult, error) {
	var res common.ListResult
	err := c.rpc.CallResult(ctx, common.MethodTimerList, &common.ListParams{IncludeFired: includeFired}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Version returns the daemon's version information.
func (c *Client) Version(ctx context.Context) (*common.VersionResult, error) {
	var res common.VersionResult
	err := c.rpc.CallResult(ctx, common.MethodSystemVersion, nil, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Shutdown asks the daemon to exit. The daemon replies before it stops.
func (c *Client) Shutdown(ctx context.Context) error {
	var res common.EmptyResult
	return c.rpc.CallResult(ctx, common.MethodSystemShutdown, nil, &res)
}

// Close terminates the connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}
