package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// dialOnce attempts one connection and measures how long the dial took to
// resolve. DialContext races the connection against the deadline internally,
// so exactly one outcome wins: a ready connection, a dial error, or a
// deadline expiry that tears down the in-flight attempt.
func dialOnce(ctx context.Context, network, address string, port int, timeout time.Duration) (time.Duration, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var d net.Dialer
	conn, err := d.DialContext(cctx, network, net.JoinHostPort(address, strconv.Itoa(port)))
	elapsed := time.Since(start)
	if err != nil {
		return elapsed, err
	}
	_ = conn.Close()
	return elapsed, nil
}

// failureResult turns a dial error into a ProbeResult. Deadline expiry is a
// timeout; anything that resolved before the deadline (refused, unreachable,
// bad address) is an error. Neither carries a latency.
func failureResult(address string, err error) domain.ProbeResult {
	status := domain.StatusError
	if errors.Is(err, context.DeadlineExceeded) {
		status = domain.StatusTimeout
	} else {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			status = domain.StatusTimeout
		}
	}
	return domain.ProbeResult{
		Address:   address,
		CheckedAt: time.Now().UTC(),
		Status:    status,
		Reason:    err.Error(),
	}
}

// successResult builds a classified ProbeResult from a measured latency.
func successResult(address string, latency time.Duration, cfg domain.ProbeConfig) domain.ProbeResult {
	lat := latency
	return domain.ProbeResult{
		Address:   address,
		CheckedAt: time.Now().UTC(),
		Latency:   &lat,
		Status:    Classify(&lat, cfg.GoodThreshold, cfg.WarnThreshold),
	}
}
