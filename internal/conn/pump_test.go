package conn

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/mcwire/mcwire/internal/packet"
)

func TestPumpStatusExchange(t *testing.T) {
	clientEnd, serverEnd := net.Pipe()
	c := NewClient(clientEnd)
	srv := newFakeServer(serverEnd)

	go func() {
		if _, err := srv.read(); err != nil { // intention
			return
		}
		if _, err := srv.read(); err != nil { // status request
			return
		}
		srv.write(&packet.ClientboundStatusResponse{Status: `{}`})
		// Drain until the client tears the connection down.
		for {
			if _, err := srv.read(); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPump(c)
	runErr := make(chan error, 1)
	go func() { runErr <- p.Run(ctx) }()

	if err := p.Send(ctx, statusIntention()); err != nil {
		t.Fatal(err)
	}
	if err := p.Send(ctx, &packet.ServerboundStatusRequest{}); err != nil {
		t.Fatal(err)
	}

	pkt, err := p.Receive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := pkt.(*packet.ClientboundStatusResponse); !ok {
		t.Fatalf("got %T, want ClientboundStatusResponse", pkt)
	}

	cancel()
	select {
	case err := <-runErr:
		if err != nil {
			t.Errorf("Run returned %v after cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestPumpSendAfterCancel(t *testing.T) {
	clientEnd, serverEnd := net.Pipe()
	defer serverEnd.Close()
	p := NewPump(NewClient(clientEnd))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Fill past the queue so Send has to block on its select.
	for i := 0; i < pumpQueueSize; i++ {
		p.outbox <- &packet.ServerboundStatusRequest{}
	}
	if err := p.Send(ctx, &packet.ServerboundStatusRequest{}); err != context.Canceled {
		t.Errorf("Send after cancel = %v, want context.Canceled", err)
	}
	if _, err := p.Receive(ctx); err != context.Canceled {
		t.Errorf("Receive after cancel = %v, want context.Canceled", err)
	}
}

// TestPumpReadFailureStopsRun verifies a dead peer surfaces as an error
// from Run rather than a hang.
func TestPumpReadFailureStopsRun(t *testing.T) {
	clientEnd, serverEnd := net.Pipe()
	p := NewPump(NewClient(clientEnd))

	runErr := make(chan error, 1)
	go func() { runErr <- p.Run(context.Background()) }()

	serverEnd.Close()

	select {
	case err := <-runErr:
		if err == nil {
			t.Error("Run returned nil after the peer vanished")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the peer closed")
	}
}
