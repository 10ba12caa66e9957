package conn

import (
	"bytes"
	"errors"
	"net"
	"testing"

	"github.com/mcwire/mcwire/internal/crypto"
	"github.com/mcwire/mcwire/internal/frame"
	"github.com/mcwire/mcwire/internal/packet"
)

// fakeServer is the peer end of a connection under test: the same frame
// and cipher layers, driven by a per-test script. It tracks state from
// the serverbound packets it reads, the way a real server would.
type fakeServer struct {
	in    *cipherReader
	out   *cipherWriter
	fr    *frame.Reader
	fw    *frame.Writer
	state packet.State
}

func newFakeServer(raw net.Conn) *fakeServer {
	in := &cipherReader{src: raw}
	out := &cipherWriter{dst: raw}
	return &fakeServer{
		in:    in,
		out:   out,
		fr:    frame.NewReader(in),
		fw:    frame.NewWriter(out),
		state: packet.Handshake,
	}
}

func (s *fakeServer) read() (packet.Packet, error) {
	payload, err := s.fr.Read()
	if err != nil {
		return nil, err
	}
	p, err := packet.Unmarshal(s.state, packet.Serverbound, payload)
	if err != nil {
		return nil, err
	}
	if tr, ok := p.(packet.Transitioner); ok {
		s.state = tr.NextState()
	}
	return p, nil
}

func (s *fakeServer) write(p packet.Packet) error {
	payload, err := packet.Marshal(p)
	if err != nil {
		return err
	}
	return s.fw.Write(payload)
}

func (s *fakeServer) enableEncryption(secret []byte) error {
	enc, dec, err := crypto.NewPair(secret)
	if err != nil {
		return err
	}
	s.out.enable(enc)
	s.in.enable(dec)
	return nil
}

func (s *fakeServer) enableCompression(threshold int) {
	s.fr.EnableCompression()
	s.fw.SetThreshold(threshold)
}

func statusIntention() *packet.ServerboundIntention {
	return &packet.ServerboundIntention{
		ProtocolVersion: packet.ProtocolVersion,
		HostName:        "localhost",
		Port:            25565,
		Intent:          packet.IntentStatus,
	}
}

func TestStatusFlow(t *testing.T) {
	clientEnd, serverEnd := net.Pipe()
	defer clientEnd.Close()
	c := NewClient(clientEnd)
	srv := newFakeServer(serverEnd)

	errc := make(chan error, 1)
	go func() {
		errc <- func() error {
			if _, err := srv.read(); err != nil {
				return err
			}
			if srv.state != packet.Status {
				return errors.New("server did not follow the intention transition")
			}
			if _, err := srv.read(); err != nil {
				return err
			}
			return srv.write(&packet.ClientboundStatusResponse{Status: `{"version":{"name":"1.21.4","protocol":769}}`})
		}()
	}()

	if got := c.State(); got != packet.Handshake {
		t.Fatalf("initial state = %s", got)
	}
	if err := c.WritePacket(statusIntention()); err != nil {
		t.Fatal(err)
	}
	if got := c.State(); got != packet.Status {
		t.Fatalf("state after intention = %s, want Status", got)
	}
	if err := c.WritePacket(&packet.ServerboundStatusRequest{}); err != nil {
		t.Fatal(err)
	}

	p, err := c.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	resp, ok := p.(*packet.ClientboundStatusResponse)
	if !ok {
		t.Fatalf("got %T, want ClientboundStatusResponse", p)
	}
	if resp.Status == "" {
		t.Error("empty status document")
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}

// TestReadGatedByState verifies an inbound id is looked up in the table
// for the connection's current state, not some global table.
func TestReadGatedByState(t *testing.T) {
	clientEnd, serverEnd := net.Pipe()
	defer clientEnd.Close()
	c := NewClient(clientEnd)
	srv := newFakeServer(serverEnd)

	errc := make(chan error, 1)
	go func() {
		errc <- func() error {
			if _, err := srv.read(); err != nil {
				return err
			}
			// Login compression is id 0x03, which has no clientbound
			// schema in Status.
			return srv.write(&packet.ClientboundLoginCompression{Threshold: 256})
		}()
	}()

	if err := c.WritePacket(statusIntention()); err != nil {
		t.Fatal(err)
	}
	_, err := c.ReadPacket()
	var unknown *packet.UnknownPacketError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want UnknownPacketError", err)
	}
	if unknown.State != packet.Status || unknown.ID != 0x03 {
		t.Errorf("error fields = %+v", unknown)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}

func TestEncryptedExchange(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, crypto.SecretSize)

	clientEnd, serverEnd := net.Pipe()
	defer clientEnd.Close()
	c := NewClient(clientEnd)
	srv := newFakeServer(serverEnd)

	errc := make(chan error, 1)
	go func() {
		errc <- func() error {
			if _, err := srv.read(); err != nil {
				return err
			}
			if err := srv.enableEncryption(secret); err != nil {
				return err
			}
			p, err := srv.read()
			if err != nil {
				return err
			}
			hello, ok := p.(*packet.ServerboundHello)
			if !ok {
				return errors.New("expected hello after enabling encryption")
			}
			if hello.Name != "Steve" {
				return errors.New("hello did not survive the cipher")
			}
			return srv.write(&packet.ClientboundLoginCompression{Threshold: 128})
		}()
	}()

	intention := statusIntention()
	intention.Intent = packet.IntentLogin
	if err := c.WritePacket(intention); err != nil {
		t.Fatal(err)
	}
	if err := c.EnableEncryption(secret); err != nil {
		t.Fatal(err)
	}
	if err := c.WritePacket(&packet.ServerboundHello{Name: "Steve"}); err != nil {
		t.Fatal(err)
	}

	p, err := c.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	comp, ok := p.(*packet.ClientboundLoginCompression)
	if !ok || comp.Threshold != 128 {
		t.Fatalf("got %#v, want compression threshold 128", p)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}

	if err := c.EnableEncryption(secret); err == nil {
		t.Error("second EnableEncryption did not fail")
	}
}

func TestCompressedConnection(t *testing.T) {
	clientEnd, serverEnd := net.Pipe()
	defer clientEnd.Close()
	c := NewClient(clientEnd)
	srv := newFakeServer(serverEnd)

	c.SetCompressionThreshold(16)
	srv.enableCompression(16)

	long := statusIntention()
	long.HostName = "a-hostname-well-past-the-threshold.example.com"

	errc := make(chan error, 1)
	go func() {
		errc <- func() error {
			p, err := srv.read()
			if err != nil {
				return err
			}
			got, ok := p.(*packet.ServerboundIntention)
			if !ok || got.HostName != long.HostName {
				return errors.New("intention did not survive compression")
			}
			if _, err := srv.read(); err != nil {
				return err
			}
			return srv.write(&packet.ClientboundStatusResponse{
				Status: `{"description":{"text":"a motd long enough to cross the compression threshold"}}`,
			})
		}()
	}()

	if err := c.WritePacket(long); err != nil {
		t.Fatal(err)
	}
	if err := c.WritePacket(&packet.ServerboundStatusRequest{}); err != nil {
		t.Fatal(err)
	}
	p, err := c.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*packet.ClientboundStatusResponse); !ok {
		t.Fatalf("got %T, want ClientboundStatusResponse", p)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}

// TestNegativeThresholdIsNoop verifies a negative threshold leaves both
// directions on plain framing.
func TestNegativeThresholdIsNoop(t *testing.T) {
	clientEnd, serverEnd := net.Pipe()
	defer clientEnd.Close()
	c := NewClient(clientEnd)
	srv := newFakeServer(serverEnd)

	c.SetCompressionThreshold(-1)

	errc := make(chan error, 1)
	go func() {
		errc <- func() error {
			_, err := srv.read()
			return err
		}()
	}()

	if err := c.WritePacket(statusIntention()); err != nil {
		t.Fatal(err)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}
