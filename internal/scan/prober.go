// Package scan owns the subnet prober, the registration merger and the
// periodic scan loop that feeds them.
package scan

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/wemops/internal/concurrency"
	"github.com/wheelibin/wemops/internal/constants"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/wemo"
)

// Prober expands CIDR ranges and finds compatible devices behind them:
// a short TCP connect marks a host reachable, a parseable description fetch
// makes it a device. Reachability checks run in a bounded pool so a /24
// completes in seconds.
type Prober struct {
	logger  *log.Logger
	ports   []int
	workers int

	// injectable for tests
	dial     func(ctx context.Context, address string, timeout time.Duration) error
	describe func(host string) (models.DeviceHandle, error)
}

func NewProber(logger *log.Logger, client *wemo.Client) *Prober {
	return &Prober{
		logger:  logger,
		ports:   wemo.CandidatePorts,
		workers: constants.ProbeWorkers,
		dial: func(ctx context.Context, address string, timeout time.Duration) error {
			dialer := net.Dialer{Timeout: timeout}
			conn, err := dialer.DialContext(ctx, "tcp", address)
			if err != nil {
				return err
			}
			return conn.Close()
		},
		describe: client.ResolveAny,
	}
}

// Probe scans all the given CIDR ranges and returns a handle per discovered
// device. A malformed CIDR is logged and skipped; the other ranges proceed.
func (p *Prober) Probe(ctx context.Context, cidrs []string) []models.DeviceHandle {
	hosts := []string{}
	for _, cidr := range cidrs {
		expanded, err := expandCIDR(cidr)
		if err != nil {
			p.logger.Error("Skipping malformed CIDR", "cidr", cidr, "err", err)
			continue
		}
		hosts = append(hosts, expanded...)
	}
	if len(hosts) == 0 {
		return nil
	}

	p.logger.Debug("Probing hosts", "count", len(hosts))
	reachable := p.reachableHosts(ctx, hosts)
	p.logger.Debug("Reachable hosts", "count", len(reachable))

	handles := []models.DeviceHandle{}
	for _, host := range reachable {
		if ctx.Err() != nil {
			break
		}
		handle, err := p.describe(host)
		if err != nil {
			// something accepted the connect but it isn't one of ours
			continue
		}
		handles = append(handles, handle)
	}
	return handles
}

// reachableHosts runs the TCP reachability checks with at most p.workers in
// flight. The candidate ports are tried in order; the first accept marks the
// host reachable and the remaining ports are skipped.
func (p *Prober) reachableHosts(ctx context.Context, hosts []string) []string {
	var mu sync.Mutex
	reachable := []string{}

	worker := concurrency.NewBoundedWorker(p.workers, func(ctx context.Context, host string) error {
		for _, port := range p.ports {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			address := net.JoinHostPort(host, fmt.Sprintf("%d", port))
			if err := p.dial(ctx, address, constants.ProbeTimeout); err == nil {
				mu.Lock()
				reachable = append(reachable, host)
				mu.Unlock()
				return nil
			}
		}
		return nil
	})
	worker.Run(ctx, hosts)

	return reachable
}

// expandCIDR lists the host addresses of a range, excluding the network and
// broadcast addresses. A bare address or prefix without a mask defaults
// to /24.
func expandCIDR(cidr string) ([]string, error) {
	cidr = strings.TrimSpace(cidr)
	if !strings.Contains(cidr, "/") {
		cidr += "/24"
	}

	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("error parsing CIDR %q: %w", cidr, err)
	}

	all := []string{}
	for ip := network.IP.Mask(network.Mask); network.Contains(ip); ip = nextIP(ip) {
		all = append(all, ip.String())
	}
	// /31 and /32 have no network/broadcast pair to strip
	if len(all) <= 2 {
		return all, nil
	}
	return all[1 : len(all)-1], nil
}

func nextIP(ip net.IP) net.IP {
	next := make(net.IP, len(ip))
	copy(next, ip)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	return next
}
