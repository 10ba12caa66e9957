package conn

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mcwire/mcwire/internal/packet"
)

// pumpQueueSize is the per-direction channel capacity between the pump
// loops and the orchestration layer.
const pumpQueueSize = 64

// Pump runs a connection's two directions as concurrent loops and
// exposes them as channels, so orchestration above this layer never
// touches framing or state. Each loop is still strictly sequential on
// its own direction.
type Pump struct {
	conn   *Conn
	inbox  chan packet.Packet
	outbox chan packet.Packet
}

// NewPump wraps an established connection. Call Run to start the loops.
func NewPump(c *Conn) *Pump {
	return &Pump{
		conn:   c,
		inbox:  make(chan packet.Packet, pumpQueueSize),
		outbox: make(chan packet.Packet, pumpQueueSize),
	}
}

// Run drives both loops until the context is cancelled or either
// direction fails. Cancellation closes the connection, which unblocks
// the read loop's wait for frame bytes; in-flight buffers are discarded.
// The connection is always closed by the time Run returns.
func (p *Pump) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		<-ctx.Done()
		p.conn.Close()
		return nil
	})

	group.Go(func() error {
		return p.readLoop(ctx)
	})

	group.Go(func() error {
		return p.writeLoop(ctx)
	})

	err := group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Receive returns the next decoded packet.
func (p *Pump) Receive(ctx context.Context) (packet.Packet, error) {
	select {
	case pkt := <-p.inbox:
		return pkt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send queues a packet for the write loop.
func (p *Pump) Send(ctx context.Context, pkt packet.Packet) error {
	select {
	case p.outbox <- pkt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pump) readLoop(ctx context.Context) error {
	for {
		pkt, err := p.conn.ReadPacket()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return errors.Wrap(err, "read loop")
			}
		}
		select {
		case p.inbox <- pkt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pump) writeLoop(ctx context.Context) error {
	for {
		select {
		case pkt := <-p.outbox:
			if err := p.conn.WritePacket(pkt); err != nil {
				return errors.Wrap(err, "write loop")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
