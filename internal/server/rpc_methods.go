package server

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/chronoq/chronoq/common"
	"github.com/chronoq/chronoq/internal/timerd"
)

// Custom JSON-RPC error codes for timer operations.
const (
	codeInvalidParams = jrpc2.Code(-32602)
)

// RPCServer holds the JSON-RPC 2.0 method handlers and the HTTP bridge.
// The same handler map backs both the HTTP POST endpoint and the WebSocket
// transport.
type RPCServer struct {
	bridge     jhttp.Bridge
	methods    handler.Map
	svc        *timerd.Service
	version    string
	commit     string
	buildType  string
	onShutdown func()
}

// NewRPCServer creates an RPCServer exposing the timer service. onShutdown is
// invoked (asynchronously) when a client calls system.shutdown; it may be nil
// to disable remote shutdown.
func NewRPCServer(cfg *Config, svc *timerd.Service, onShutdown func()) *RPCServer {
	rs := &RPCServer{
		svc:        svc,
		version:    cfg.Version,
		commit:     cfg.Commit,
		buildType:  cfg.BuildType,
		onShutdown: onShutdown,
	}
	rs.methods = handler.Map{
		common.MethodTimerAdd:        handler.New(rs.timerAdd),
		common.MethodTimerCancel:     handler.New(rs.timerCancel),
		common.MethodTimerCancelAt:   handler.New(rs.timerCancelAt),
		common.MethodTimerReschedule: handler.New(rs.timerReschedule),
		common.MethodTimerList:       handler.New(rs.timerList),
		common.MethodSystemVersion:   handler.New(rs.systemGetVersion),
		common.MethodSystemShutdown:  handler.New(rs.systemShutdown),
	}
	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

// timerAdd schedules (or moves) a named timer.
func (rs *RPCServer) timerAdd(_ context.Context, p *common.AddParams) (*common.AddResult, error) {
	at, err := rs.svc.Add(p.ID, p.Message, p.At, p.Cron)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	return &common.AddResult{ID: p.ID, At: at}, nil
}

// timerCancel cancels a timer by id. Cancelling an unknown id is not an
// error; the result reports whether anything was pending.
func (rs *RPCServer) timerCancel(_ context.Context, p *common.CancelParams) (*common.CancelResult, error) {
	if p.ID == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: id"}
	}
	return &common.CancelResult{Cancelled: rs.svc.Cancel(p.ID)}, nil
}

// timerCancelAt cancels every timer scheduled for exactly the given instant.
func (rs *RPCServer) timerCancelAt(_ context.Context, p *common.CancelAtParams) (*common.CancelAtResult, error) {
	if p.At.IsZero() {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: at"}
	}
	return &common.CancelAtResult{Cancelled: rs.svc.CancelAt(p.At)}, nil
}

// timerReschedule moves a pending timer to a new deadline.
func (rs *RPCServer) timerReschedule(_ context.Context, p *common.RescheduleParams) (*common.RescheduleResult, error) {
	if p.ID == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: id"}
	}
	if p.At.IsZero() {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: at"}
	}
	return &common.RescheduleResult{
		Rescheduled: rs.svc.Reschedule(p.ID, p.At),
		At:          p.At,
	}, nil
}

// timerList returns pending timers (and, on request, the firing history).
func (rs *RPCServer) timerList(_ context.Context, p *common.ListParams) (*common.ListResult, error) {
	timers := rs.svc.List()
	res := &common.ListResult{Timers: make([]common.TimerInfo, len(timers))}
	for i, t := range timers {
		res.Timers[i] = common.TimerInfo{ID: t.ID, Message: t.Message, At: t.At, Cron: t.Cron}
	}
	if p != nil && p.IncludeFired {
		fired := rs.svc.History()
		res.Fired = make([]common.FiredInfo, len(fired))
		for i, f := range fired {
			res.Fired[i] = common.FiredInfo{ID: f.ID, Message: f.Message, At: f.At, FiredAt: f.FiredAt}
		}
	}
	return res, nil
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResult, error) {
	return &common.VersionResult{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

// systemShutdown requests daemon shutdown. The reply is sent before the
// shutdown proceeds, so the callback runs asynchronously.
func (rs *RPCServer) systemShutdown(_ context.Context) (*common.EmptyResult, error) {
	if rs.onShutdown != nil {
		go rs.onShutdown()
	}
	return &common.EmptyResult{}, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
