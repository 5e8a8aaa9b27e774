package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chronoq/chronoq/common"
	"github.com/chronoq/chronoq/pkg/timercli"
	"github.com/urfave/cli"
)

var (
	daemonHost string
	daemonPort int
	secret     string

	connFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "host, H",
			Usage:       "host the daemon is listening on",
			Value:       common.DefaultHost,
			Destination: &daemonHost,
		},
		cli.IntFlag{
			Name:        "port, p",
			Usage:       "port the daemon is listening on",
			Value:       common.DefaultPort,
			Destination: &daemonPort,
		},
		cli.StringFlag{
			Name:        "secret, s",
			Usage:       "shared secret for daemon authentication",
			EnvVar:      "CHRONOQ_SECRET",
			Destination: &secret,
		},
	}
)

func daemonAddr() string {
	return fmt.Sprintf("%s:%d", daemonHost, daemonPort)
}

func dialDaemon(ctx context.Context) (*timercli.Client, error) {
	dctx, cancel := context.WithTimeout(ctx, DefaultDialTimeout)
	defer cancel()
	return timercli.Dial(dctx, daemonAddr(), secret)
}

// parseDeadline resolves the --at/--in flag pair into an absolute
// instant. Exactly one of the two may be set; both empty yields the
// zero time, which the daemon treats as "derive from cron".
func parseDeadline(at, in string) (time.Time, error) {
	at, in = strings.TrimSpace(at), strings.TrimSpace(in)
	if at != "" && in != "" {
		return time.Time{}, errors.New("cannot use --at and --in together")
	}
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --at value %q: expected RFC 3339", at)
		}
		return t, nil
	}
	if in != "" {
		d, err := time.ParseDuration(in)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --in value %q: expected a duration like 90s or 3m", in)
		}
		return time.Now().Add(d), nil
	}
	return time.Time{}, nil
}
