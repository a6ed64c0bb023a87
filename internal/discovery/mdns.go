package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/pkg/errors"
)

// ServiceType is the mDNS service advertised by board servers.
const ServiceType = "_corkboard._tcp"

// DefaultTimeout is how long a browse waits for answers.
const DefaultTimeout = 2 * time.Second

type (
	// An Advertiser announces a board server on the LAN.
	Advertiser struct {
		server *mdns.Server
	}

	// A Board is a board server found on the LAN.
	Board struct {
		Instance string `json:"instance"`
		Host     string `json:"host"`
		Endpoint string `json:"endpoint"`
		Version  string `json:"version,omitempty"`
	}
)

// Advertise announces the board server listening on address.
// An empty instance uses the hostname.
func Advertise(instance, address, version string) (*Advertiser, error) {
	port, err := Port(address)
	if err != nil {
		return nil, err
	}

	if instance == "" {
		if instance, err = os.Hostname(); err != nil {
			return nil, errors.Wrap(err, "could not get hostname")
		}
	}

	info := []string{"corkboard", "version=" + version}
	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, errors.Wrap(err, "could not create mDNS service")
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, errors.Wrap(err, "could not start mDNS server")
	}
	return &Advertiser{server: server}, nil
}

// Shutdown stops the announcement.
func (a *Advertiser) Shutdown() error {
	return a.server.Shutdown()
}

// Browse looks for board servers on the LAN until the timeout or the context deadline.
func Browse(ctx context.Context, timeout time.Duration) ([]Board, error) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	found := map[string]Board{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if b, ok := NewBoard(e); ok {
				found[b.Endpoint] = b
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, errors.Wrap(err, "could not browse the network")
	}

	boards := make([]Board, 0, len(found))
	for _, b := range found {
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool {
		return boards[i].Endpoint < boards[j].Endpoint
	})
	return boards, nil
}

// NewBoard returns the board described by a service entry.
func NewBoard(e *mdns.ServiceEntry) (Board, bool) {
	if e == nil || e.Port == 0 {
		return Board{}, false
	}

	ip := e.AddrV4
	if ip == nil {
		ip = e.AddrV6
	}
	if ip == nil {
		return Board{}, false
	}

	b := Board{
		Instance: instance(e.Name),
		Host:     strings.TrimSuffix(e.Host, "."),
		Endpoint: fmt.Sprintf("http://%s", net.JoinHostPort(ip.String(), strconv.Itoa(e.Port))),
	}
	for _, field := range e.InfoFields {
		if strings.HasPrefix(field, "version=") {
			b.Version = strings.TrimPrefix(field, "version=")
		}
	}
	return b, true
}

// Port returns the port of a listening address such as ":5000" or "localhost:5000".
func Port(address string) (int, error) {
	_, p, err := net.SplitHostPort(address)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid address %q", address)
	}

	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return 0, errors.Errorf("invalid port in address %q", address)
	}
	return port, nil
}

func instance(name string) string {
	if i := strings.Index(name, "."+ServiceType); i > 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, `\ `, " ")
}
