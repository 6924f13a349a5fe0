package wemo

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wheelibin/wemops/internal/models"
)

// setup.xml is a UPnP device description document
type descriptionResponse struct {
	Device struct {
		DeviceType      string `xml:"deviceType"`
		FriendlyName    string `xml:"friendlyName"`
		MacAddress      string `xml:"macAddress"`
		SerialNumber    string `xml:"serialNumber"`
		FirmwareVersion string `xml:"firmwareVersion"`
	} `xml:"device"`
}

// FetchDescription reads and parses a device's setup.xml. An error means
// "no compatible device behind this address:port" - a bare TCP accept is not
// proof of one.
func (c *Client) FetchDescription(host string, port int) (models.Identity, error) {
	url := fmt.Sprintf("http://%s:%d/setup.xml", host, port)

	resp, err := c.describeClient.Get(url)
	if err != nil {
		return models.Identity{}, fmt.Errorf("error fetching description from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Identity{}, fmt.Errorf("error fetching description from %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Identity{}, fmt.Errorf("error reading description from %s: %w", url, err)
	}

	parsed := descriptionResponse{}
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return models.Identity{}, fmt.Errorf("error parsing description from %s: %w", url, err)
	}
	if parsed.Device.FriendlyName == "" {
		return models.Identity{}, fmt.Errorf("description from %s has no friendly name", url)
	}

	return models.Identity{
		Name:     parsed.Device.FriendlyName,
		MAC:      parsed.Device.MacAddress,
		Serial:   parsed.Device.SerialNumber,
		Firmware: parsed.Device.FirmwareVersion,
		Kind:     kindFromDeviceType(parsed.Device.DeviceType),
	}, nil
}

// Resolve turns an address into a live handle by fetching the description on
// the given port.
func (c *Client) Resolve(host string, port int) (models.DeviceHandle, error) {
	identity, err := c.FetchDescription(host, port)
	if err != nil {
		return nil, err
	}
	return newDevice(c, host, port, identity), nil
}

// ResolveAny tries the candidate ports in order and returns a handle for the
// first parseable description.
func (c *Client) ResolveAny(host string) (models.DeviceHandle, error) {
	for _, port := range CandidatePorts {
		handle, err := c.Resolve(host, port)
		if err == nil {
			return handle, nil
		}
	}
	return nil, fmt.Errorf("no device description at %s on any candidate port", host)
}

// deviceType is a URN like "urn:Belkin:device:dimmer:1"
func kindFromDeviceType(deviceType string) models.DeviceKind {
	if strings.Contains(strings.ToLower(deviceType), "dimmer") {
		return models.KindDimmer
	}
	return models.KindSwitch
}
