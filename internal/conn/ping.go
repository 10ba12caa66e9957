package conn

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/mcwire/mcwire/internal/packet"
)

// ServerStatus is the decoded server-list description.
type ServerStatus struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Description json.RawMessage `json:"description"`
	Favicon     string          `json:"favicon,omitempty"`
}

// Ping runs the Status side-branch of the lifecycle against addr: dial,
// handshake with status intent, fetch the description, then measure the
// round trip with a ping/pong pair. The connection is discarded at the
// end — Status is terminal by design.
func Ping(ctx context.Context, addr string) (*ServerStatus, time.Duration, error) {
	host, port, err := splitAddr(addr)
	if err != nil {
		return nil, 0, err
	}

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return nil, 0, errors.Wrap(err, "dial")
	}
	c := NewClient(raw)
	defer c.Close()
	if deadline, ok := ctx.Deadline(); ok {
		c.SetDeadline(deadline)
	}

	err = c.WritePacket(&packet.ServerboundIntention{
		ProtocolVersion: packet.ProtocolVersion,
		HostName:        host,
		Port:            port,
		Intent:          packet.IntentStatus,
	})
	if err != nil {
		return nil, 0, err
	}
	if err := c.WritePacket(&packet.ServerboundStatusRequest{}); err != nil {
		return nil, 0, err
	}

	p, err := c.ReadPacket()
	if err != nil {
		return nil, 0, err
	}
	resp, ok := p.(*packet.ClientboundStatusResponse)
	if !ok {
		return nil, 0, errors.Errorf("expected status response, got %T", p)
	}
	var status ServerStatus
	if err := json.Unmarshal([]byte(resp.Status), &status); err != nil {
		return nil, 0, errors.Wrap(err, "parse status JSON")
	}

	start := time.Now()
	if err := c.WritePacket(&packet.ServerboundPingRequest{Time: start.UnixMilli()}); err != nil {
		return nil, 0, err
	}
	p, err = c.ReadPacket()
	if err != nil {
		return nil, 0, err
	}
	if _, ok := p.(*packet.ClientboundPongResponse); !ok {
		return nil, 0, errors.Errorf("expected pong, got %T", p)
	}
	return &status, time.Since(start), nil
}

// splitAddr parses host[:port], defaulting to the standard port.
func splitAddr(addr string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 25565, nil
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, errors.Errorf("invalid port %q", portStr)
	}
	return host, uint16(port), nil
}
