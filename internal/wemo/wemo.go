// Package wemo speaks the Belkin UPnP dialect: device descriptions from
// setup.xml, control RPCs over the basicevent SOAP service, and one-shot
// SSDP discovery.
package wemo

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/wemops/internal/constants"
)

// CandidatePorts are the ports a device's HTTP server may be listening on,
// tried in order. Devices re-bind to a neighbouring port after a reboot.
var CandidatePorts = []int{49153, 49152, 49154, 49155}

// Client holds the shared HTTP clients used for description fetches and
// control calls. One Client serves any number of device handles.
type Client struct {
	logger *log.Logger

	describeClient *http.Client
	controlClient  *http.Client
}

func NewClient(logger *log.Logger) *Client {
	return &Client{
		logger:         logger,
		describeClient: &http.Client{Timeout: constants.DescriptionTimeout},
		controlClient:  &http.Client{Timeout: constants.ControlTimeout},
	}
}
