package wemo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/wheelibin/wemops/internal/models"
)

const basicEventService = "urn:Belkin:service:basicevent:1"

// Device is the concrete DeviceHandle. Address, port and identity are fixed
// for the handle's lifetime; a moved device gets a freshly resolved handle.
type Device struct {
	client   *Client
	host     string
	port     int
	identity models.Identity

	mu        sync.Mutex
	lastState int
	haveState bool
}

var _ models.DeviceHandle = (*Device)(nil)

func newDevice(client *Client, host string, port int, identity models.Identity) *Device {
	return &Device{client: client, host: host, port: port, identity: identity}
}

func (d *Device) Address() string           { return d.host }
func (d *Device) Port() int                 { return d.port }
func (d *Device) Identity() models.Identity { return d.identity }

func (d *Device) GetState(ctx context.Context, forceRefresh bool) (int, error) {
	if !forceRefresh {
		d.mu.Lock()
		if d.haveState {
			state := d.lastState
			d.mu.Unlock()
			return state, nil
		}
		d.mu.Unlock()
	}

	body, err := d.call(ctx, "GetBinaryState", nil)
	if err != nil {
		return 0, err
	}
	state, err := parseBinaryState(body)
	if err != nil {
		return 0, fmt.Errorf("error reading state from %s: %w", d.identity.Name, err)
	}

	d.mu.Lock()
	d.lastState = state
	d.haveState = true
	d.mu.Unlock()

	return state, nil
}

func (d *Device) TurnOn(ctx context.Context) error {
	return d.setBinaryState(ctx, 1)
}

func (d *Device) TurnOff(ctx context.Context) error {
	return d.setBinaryState(ctx, 0)
}

// Toggle reads the live state and sets the inverse. The two calls are not
// atomic on the device, matching how the physical button behaves.
func (d *Device) Toggle(ctx context.Context) error {
	state, err := d.GetState(ctx, true)
	if err != nil {
		return err
	}
	if state > 0 {
		return d.TurnOff(ctx)
	}
	return d.TurnOn(ctx)
}

func (d *Device) SetBrightness(ctx context.Context, level int) error {
	if d.identity.Kind != models.KindDimmer {
		return fmt.Errorf("device %s is not a dimmer", d.identity.Name)
	}
	if level < 0 || level > 100 {
		return fmt.Errorf("brightness %d out of range 0-100", level)
	}
	_, err := d.call(ctx, "SetBinaryState", map[string]string{
		"BinaryState": "1",
		"brightness":  strconv.Itoa(level),
	})
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.lastState = level
	d.haveState = true
	d.mu.Unlock()
	return nil
}

func (d *Device) Rename(ctx context.Context, name string) error {
	_, err := d.call(ctx, "ChangeFriendlyName", map[string]string{"FriendlyName": name})
	return err
}

func (d *Device) ResetToFactory(ctx context.Context, code string) error {
	_, err := d.call(ctx, "ReSetup", map[string]string{"Reset": code})
	return err
}

func (d *Device) setBinaryState(ctx context.Context, state int) error {
	_, err := d.call(ctx, "SetBinaryState", map[string]string{"BinaryState": strconv.Itoa(state)})
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.lastState = state
	d.haveState = true
	d.mu.Unlock()
	return nil
}

// call performs one SOAP action against the basicevent control endpoint and
// returns the raw response body.
func (d *Device) call(ctx context.Context, action string, args map[string]string) ([]byte, error) {
	url := fmt.Sprintf("http://%s:%d/upnp/control/basicevent1", d.host, d.port)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(soapEnvelope(action, args)))
	if err != nil {
		return nil, fmt.Errorf("error building %s request for %s: %w", action, d.identity.Name, err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", fmt.Sprintf(`"%s#%s"`, basicEventService, action))

	resp, err := d.client.controlClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling %s on %s: %w", action, d.identity.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s response from %s: %w", action, d.identity.Name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error calling %s on %s: status %d", action, d.identity.Name, resp.StatusCode)
	}

	return body, nil
}

func soapEnvelope(action string, args map[string]string) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	sb.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`)
	sb.WriteString("<s:Body>")
	fmt.Fprintf(&sb, `<u:%s xmlns:u="%s">`, action, basicEventService)
	for name, value := range args {
		fmt.Fprintf(&sb, "<%s>%s</%s>", name, value, name)
	}
	fmt.Fprintf(&sb, "</u:%s>", action)
	sb.WriteString("</s:Body></s:Envelope>")
	return []byte(sb.String())
}

var binaryStateRe = regexp.MustCompile(`<BinaryState>([^<]+)</BinaryState>`)

// Dimmers report compound states like "1|65|...", the leading field is the
// on/off-or-level value.
func parseBinaryState(body []byte) (int, error) {
	match := binaryStateRe.FindSubmatch(body)
	if match == nil {
		return 0, fmt.Errorf("no BinaryState in response")
	}
	value := strings.SplitN(string(match[1]), "|", 2)[0]
	state, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("unparseable BinaryState %q", string(match[1]))
	}
	return state, nil
}
