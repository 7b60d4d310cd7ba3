// Package dispatch implements the local front door of the bridge daemon.
//
// It listens on a Unix domain socket; each accepted connection carries one
// newline-terminated text request of the form
//
//	<action> key=value key=value ...
//
// and receives exactly one response line back: "OK", optionally followed by
// a short message, or "ERR" with a human-readable reason. Recognized actions
// map to device operations built from the rosapi/netops packages; every
// request runs over its own freshly opened device session.
//
// Remote device misbehavior of any kind becomes an "ERR" line; it never
// takes the daemon down.
package dispatch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/ispgear/rosbridge/config"
	"github.com/ispgear/rosbridge/credstore"
	"github.com/ispgear/rosbridge/internal/pool"
	"github.com/ispgear/rosbridge/logger"
	"github.com/ispgear/rosbridge/netops"
	"github.com/ispgear/rosbridge/rosapi"
)

// maxRequestLine bounds one request line; anything longer is malformed.
const maxRequestLine = 4096

// Metrics contains concurrent counters for the dispatcher.
type Metrics struct {
	// RequestCount counts accepted requests.
	RequestCount *xsync.Counter
	// FailureCount counts requests that ended in an ERR response.
	FailureCount *xsync.Counter
}

// Dispatcher serves the front-door socket.
type Dispatcher struct {
	cfg    *config.Config
	creds  *credstore.Store
	logger logger.Logger

	// open establishes a device session; replaced in tests with an
	// in-memory transport.
	open func(ctx context.Context, dev *config.Device) (*rosapi.Session, error)

	// inflight maps request ID to its raw request line while it executes.
	inflight *xsync.MapOf[string, string]

	metrics Metrics
}

// New creates a Dispatcher. It fails fast when any configured device has no
// entry in the credential store, so a misconfigured daemon refuses to start.
func New(cfg *config.Config, creds *credstore.Store, log logger.Logger) (*Dispatcher, error) {
	if cfg == nil {
		return nil, errors.New("dispatch: config is nil")
	}
	if creds == nil {
		return nil, errors.New("dispatch: credential store is nil")
	}
	if log == nil {
		log = logger.GetLogger()
	}

	if err := creds.Validate(cfg.DeviceNames()); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		cfg:      cfg,
		creds:    creds,
		logger:   log,
		inflight: xsync.NewMapOf[string, string](),
		metrics: Metrics{
			RequestCount: xsync.NewCounter(),
			FailureCount: xsync.NewCounter(),
		},
	}
	d.open = d.openSession

	return d, nil
}

// Metrics returns the dispatcher counters.
func (d *Dispatcher) Metrics() *Metrics {
	return &d.metrics
}

// InflightCount returns the number of requests currently executing.
func (d *Dispatcher) InflightCount() int {
	return d.inflight.Size()
}

// ListenAndServe serves requests on the configured Unix socket until ctx is
// canceled. It returns after every in-flight request has finished.
func (d *Dispatcher) ListenAndServe(ctx context.Context) error {
	// a stale socket from an unclean shutdown blocks the listen call
	_ = os.Remove(d.cfg.SocketPath)

	ln, err := net.Listen("unix", d.cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("listen %s: %w", d.cfg.SocketPath, err)
	}
	defer func() {
		_ = ln.Close()
		_ = os.Remove(d.cfg.SocketPath)
	}()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	d.logger.Info("front door listening", "socket", d.cfg.SocketPath, "devices", len(d.cfg.Devices))

	var wg sync.WaitGroup

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}

			d.logger.Error("accept failed", "method", "ListenAndServe", "error", err)

			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			d.handleConn(ctx, conn)
		}()
	}

	wg.Wait()
	d.logger.Info("front door stopped")

	return nil
}

// handleConn serves one request connection: read a line, execute it under
// the request deadline, answer with one line.
func (d *Dispatcher) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	timeout := d.cfg.RequestTimeout.Duration
	reqID := ulid.Make().String()
	log := d.logger.With("req", reqID)

	_ = conn.SetReadDeadline(time.Now().Add(timeout))

	line, err := readRequestLine(conn)
	if err != nil {
		log.Warn("failed to read request", "error", err)
		d.respond(log, conn, "ERR malformed request")

		return
	}

	d.metrics.RequestCount.Inc()
	d.inflight.Store(reqID, line)
	defer d.inflight.Delete(reqID)

	log.Info("request received", "command", line)

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timer := pool.GetTimer(timeout)
	defer pool.PutTimer(timer)

	type execResult struct {
		msg string
		err error
	}

	resCh := make(chan execResult, 1)
	go func() {
		msg, execErr := d.execute(cctx, log, line)
		resCh <- execResult{msg: msg, err: execErr}
	}()

	select {
	case <-timer.C:
		cancel() // interrupts the dial and fails the in-flight exchange
		d.metrics.FailureCount.Inc()
		log.Warn("request timed out", "timeout", timeout)
		d.respond(log, conn, "ERR request timed out")

	case res := <-resCh:
		if res.err != nil {
			d.metrics.FailureCount.Inc()
			log.Warn("request failed", "error", res.err)
			d.respond(log, conn, "ERR "+res.err.Error())

			return
		}

		log.Info("request completed")
		if res.msg == "" {
			d.respond(log, conn, "OK")
		} else {
			d.respond(log, conn, "OK "+res.msg)
		}
	}
}

func (d *Dispatcher) respond(log logger.Logger, conn net.Conn, line string) {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
		log.Debug("failed to write response", "error", err)
	}
}

// execute resolves the device, opens and authenticates a dedicated session,
// and runs the requested operation.
func (d *Dispatcher) execute(ctx context.Context, log logger.Logger, line string) (string, error) {
	action, params, err := parseRequest(line)
	if err != nil {
		return "", err
	}

	nas, err := param(params, "nas")
	if err != nil {
		return "", err
	}

	dev, ok := d.cfg.Device(nas)
	if !ok {
		return "", fmt.Errorf("unknown device %q", nas)
	}

	creds, ok := d.creds.Lookup(dev.Name)
	if !ok {
		// New validated the store against the device list; reaching this
		// means the store and config went out of sync at runtime
		return "", fmt.Errorf("no credentials for device %q", dev.Name)
	}

	sess, err := d.open(ctx, dev)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", dev.Name, err)
	}
	defer sess.Close()

	// fail the blocking exchange promptly when the deadline cancels ctx
	go func() {
		<-ctx.Done()
		_ = sess.Close()
	}()

	ok, err = sess.Login(creds.Username, creds.Password)
	if err != nil {
		return "", fmt.Errorf("login %s: %w", dev.Name, err)
	}
	if !ok {
		return "", fmt.Errorf("device %s rejected credentials", dev.Name)
	}

	switch action {
	case "ping":
		return dev.Name + " reachable", nil

	case "queue-set":
		name, err := param(params, "name")
		if err != nil {
			return "", err
		}
		target, err := param(params, "target")
		if err != nil {
			return "", err
		}
		maxLimit, err := param(params, "max-limit")
		if err != nil {
			return "", err
		}

		if err := netops.QueueSet(sess, name, target, maxLimit); err != nil {
			return "", err
		}

		return "queue " + name + " configured", nil

	case "queue-remove":
		name, err := param(params, "name")
		if err != nil {
			return "", err
		}

		if err := netops.QueueRemove(sess, name); err != nil {
			return "", err
		}

		return "queue " + name + " removed", nil

	case "lease-remove":
		address, err := param(params, "address")
		if err != nil {
			return "", err
		}

		if err := netops.LeaseRemove(sess, address); err != nil {
			return "", err
		}

		return "lease for " + address + " removed", nil

	default:
		return "", fmt.Errorf("unknown action %q", action)
	}
}

// openSession dials and wraps a device session per the device configuration.
func (d *Dispatcher) openSession(ctx context.Context, dev *config.Device) (*rosapi.Session, error) {
	opts := []rosapi.ClientOption{
		rosapi.WithPort(dev.Port),
		rosapi.WithLogger(d.logger),
	}
	if dev.TLS {
		opts = append(opts, rosapi.WithTLS())
	}

	cfg, err := rosapi.NewClientConfig(dev.Address, opts...)
	if err != nil {
		return nil, err
	}

	return rosapi.Open(ctx, cfg)
}

// readRequestLine reads one newline-terminated request. A request closed
// without a trailing newline is accepted as well.
func readRequestLine(conn net.Conn) (string, error) {
	line, err := bufio.NewReaderSize(conn, maxRequestLine).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("empty request")
	}

	return line, nil
}

// parseRequest splits a request line into its action and key=value
// parameters. Parameter values must not contain spaces; the transport is a
// one-line text protocol.
func parseRequest(line string) (string, map[string]string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, errors.New("empty request")
	}

	action := fields[0]
	params := make(map[string]string, len(fields)-1)

	for _, f := range fields[1:] {
		key, value, found := strings.Cut(f, "=")
		if !found || key == "" {
			return "", nil, fmt.Errorf("malformed parameter %q", f)
		}
		params[key] = value
	}

	return action, params, nil
}

func param(params map[string]string, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return "", fmt.Errorf("missing %s parameter", key)
	}

	return v, nil
}
