package gateway

import (
	"context"
	"net"
	"time"
)

// Resolver produces the address of the default gateway host. Implementations
// must return quickly; the scheduler calls this on its refresh tick.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// resolveBudget caps a single resolution attempt.
const resolveBudget = 200 * time.Millisecond

// UDPResolver derives the gateway from the local address of a connected UDP
// socket. No packet is sent; the kernel's route lookup picks the outbound
// interface, and the gateway is assumed to be the .1 of that subnet. Falls
// back to a configured address when the lookup fails.
type UDPResolver struct {
	// Probe target used for the route lookup. Defaults to a public resolver.
	Target   string
	Fallback string
}

func NewUDPResolver(fallback string) *UDPResolver {
	return &UDPResolver{
		Target:   "8.8.8.8:53",
		Fallback: fallback,
	}
}

func (r *UDPResolver) Resolve(ctx context.Context) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, resolveBudget)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(cctx, "udp", r.Target)
	if err != nil {
		return r.Fallback, nil
	}
	defer conn.Close()

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || local.IP == nil {
		return r.Fallback, nil
	}
	ip4 := local.IP.To4()
	if ip4 == nil {
		return r.Fallback, nil
	}
	gw := net.IPv4(ip4[0], ip4[1], ip4[2], 1)
	return gw.String(), nil
}

// Static always resolves to a fixed address. Useful in tests and when the
// gateway is known ahead of time.
type Static string

func (s Static) Resolve(ctx context.Context) (string, error) {
	return string(s), nil
}
