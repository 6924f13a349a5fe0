package wemo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/wemops/internal/constants"
	"github.com/wheelibin/wemops/internal/models"
)

const (
	ssdpMulticastAddr = "239.255.255.250:1900"
	ssdpSearchTarget  = basicEventService
)

// Discoverer is the one-shot multicast discovery provider: it sends an SSDP
// M-SEARCH for the Belkin basicevent service and resolves every responder
// that announces within the discovery window.
type Discoverer struct {
	logger *log.Logger
	client *Client
	window time.Duration
}

func NewDiscoverer(logger *log.Logger, client *Client) *Discoverer {
	return &Discoverer{logger: logger, client: client, window: constants.DiscoveryWindow}
}

func (d *Discoverer) Discover(ctx context.Context) ([]models.DeviceHandle, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("error opening discovery socket: %w", err)
	}
	defer conn.Close()

	group, err := net.ResolveUDPAddr("udp4", ssdpMulticastAddr)
	if err != nil {
		return nil, fmt.Errorf("error resolving multicast group: %w", err)
	}

	search := fmt.Sprintf("M-SEARCH * HTTP/1.1\r\n"+
		"HOST: %s\r\n"+
		"MAN: \"ssdp:discover\"\r\n"+
		"MX: 2\r\n"+
		"ST: %s\r\n\r\n", ssdpMulticastAddr, ssdpSearchTarget)
	if _, err := conn.WriteTo([]byte(search), group); err != nil {
		return nil, fmt.Errorf("error sending discovery search: %w", err)
	}

	deadline := time.Now().Add(d.window)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetReadDeadline(deadline)

	seen := map[string]bool{}
	handles := []models.DeviceHandle{}
	buf := make([]byte, 4096)

	for {
		if ctx.Err() != nil {
			return handles, nil
		}
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			// deadline reached, announcement window is over
			return handles, nil
		}

		location := locationFromResponse(buf[:n])
		if location == "" || seen[location] {
			continue
		}
		seen[location] = true

		host, port, ok := hostPortFromLocation(location)
		if !ok {
			d.logger.Debug("ignoring discovery response with bad location", "location", location)
			continue
		}

		handle, err := d.client.Resolve(host, port)
		if err != nil {
			// an announcing host with no readable description is not a device
			d.logger.Debug("discovery responder failed description fetch", "host", host, "err", err)
			continue
		}
		handles = append(handles, handle)
	}
}

func locationFromResponse(raw []byte) string {
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), nil)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	return resp.Header.Get("Location")
}

func hostPortFromLocation(location string) (string, int, bool) {
	parsed, err := url.Parse(location)
	if err != nil {
		return "", 0, false
	}
	host := parsed.Hostname()
	port, err := strconv.Atoi(parsed.Port())
	if host == "" || err != nil {
		return "", 0, false
	}
	return host, port, true
}
