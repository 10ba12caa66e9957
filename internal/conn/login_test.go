package conn

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/mcwire/mcwire/internal/crypto"
	"github.com/mcwire/mcwire/internal/packet"
	"github.com/mcwire/mcwire/internal/util"
)

// serveOnce accepts one connection on a loopback listener and runs
// script against it, reporting the script's error on the returned
// channel.
func serveOnce(t *testing.T, script func(*fakeServer) error) (addr string, errc chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	errc = make(chan error, 1)
	go func() {
		raw, err := ln.Accept()
		if err != nil {
			errc <- err
			return
		}
		defer raw.Close()
		errc <- script(newFakeServer(raw))
	}()
	return ln.Addr().String(), errc
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestPing(t *testing.T) {
	const doc = `{"version":{"name":"1.21.4","protocol":769},"players":{"max":20,"online":3},"description":{"text":"hi"}}`

	addr, errc := serveOnce(t, func(srv *fakeServer) error {
		if _, err := srv.read(); err != nil { // intention
			return err
		}
		if _, err := srv.read(); err != nil { // status request
			return err
		}
		if err := srv.write(&packet.ClientboundStatusResponse{Status: doc}); err != nil {
			return err
		}
		p, err := srv.read()
		if err != nil {
			return err
		}
		ping, ok := p.(*packet.ServerboundPingRequest)
		if !ok {
			return errors.Errorf("expected ping request, got %T", p)
		}
		return srv.write(&packet.ClientboundPongResponse{Time: ping.Time})
	})

	status, latency, err := Ping(testCtx(t), addr)
	if err != nil {
		t.Fatal(err)
	}
	if status.Version.Name != "1.21.4" || status.Version.Protocol != 769 {
		t.Errorf("version = %+v", status.Version)
	}
	if status.Players.Max != 20 || status.Players.Online != 3 {
		t.Errorf("players = %+v", status.Players)
	}
	if latency < 0 {
		t.Errorf("negative latency %v", latency)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}

// offlineLoginScript walks the server half of an unencrypted login all
// the way to Play.
func offlineLoginScript(username string) func(*fakeServer) error {
	return func(srv *fakeServer) error {
		if _, err := srv.read(); err != nil { // intention
			return err
		}
		p, err := srv.read()
		if err != nil {
			return err
		}
		hello, ok := p.(*packet.ServerboundHello)
		if !ok {
			return errors.Errorf("expected hello, got %T", p)
		}
		if hello.Name != username {
			return errors.Errorf("hello name = %q, want %q", hello.Name, username)
		}
		if hello.ProfileID != util.OfflineUUID(hello.Name) {
			return errors.New("hello did not carry the offline-mode profile id")
		}

		if err := srv.write(&packet.ClientboundLoginCompression{Threshold: 32}); err != nil {
			return err
		}
		srv.enableCompression(32)

		err = srv.write(&packet.ClientboundLoginFinished{
			ProfileID: util.OfflineUUID(hello.Name),
			Username:  hello.Name,
		})
		if err != nil {
			return err
		}

		if _, err := srv.read(); err != nil { // login acknowledged
			return err
		}
		if srv.state != packet.Configuration {
			return errors.New("acknowledgement did not move the server to Configuration")
		}
		p, err = srv.read()
		if err != nil {
			return err
		}
		if _, ok := p.(*packet.ServerboundClientInformation); !ok {
			return errors.Errorf("expected client information, got %T", p)
		}

		probe := &packet.ClientboundConfigKeepAlive{}
		probe.KeepAliveID = 7777
		if err := srv.write(probe); err != nil {
			return err
		}
		p, err = srv.read()
		if err != nil {
			return err
		}
		echo, ok := p.(*packet.ServerboundConfigKeepAlive)
		if !ok || echo.KeepAliveID != 7777 {
			return errors.Errorf("expected keep-alive echo of 7777, got %#v", p)
		}

		if err := srv.write(&packet.ClientboundFinishConfiguration{}); err != nil {
			return err
		}
		if _, err := srv.read(); err != nil { // finish ack
			return err
		}
		if srv.state != packet.Play {
			return errors.New("finish acknowledgement did not move the server to Play")
		}
		return nil
	}
}

func TestLoginOffline(t *testing.T) {
	addr, errc := serveOnce(t, offlineLoginScript("Steve"))

	c, session, err := Login(testCtx(t), addr, LoginOptions{Username: "Steve"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if session.Username != "Steve" {
		t.Errorf("session username = %q", session.Username)
	}
	if session.ProfileID != util.OfflineUUID("Steve") {
		t.Errorf("session profile id = %s", session.ProfileID)
	}
	if got := c.State(); got != packet.Play {
		t.Errorf("state after login = %s, want Play", got)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}

func TestLoginEncrypted(t *testing.T) {
	secret := bytes.Repeat([]byte{0x24}, crypto.SecretSize)
	publicKey := []byte{0x30, 0x0d, 0x06, 0x09}
	challenge := []byte{0xde, 0xad, 0xbe, 0xef}

	addr, errc := serveOnce(t, func(srv *fakeServer) error {
		if _, err := srv.read(); err != nil { // intention
			return err
		}
		if _, err := srv.read(); err != nil { // hello
			return err
		}
		err := srv.write(&packet.ClientboundHello{
			ServerID:  "",
			PublicKey: publicKey,
			Challenge: challenge,
		})
		if err != nil {
			return err
		}
		p, err := srv.read()
		if err != nil {
			return err
		}
		key, ok := p.(*packet.ServerboundKey)
		if !ok {
			return errors.Errorf("expected key response, got %T", p)
		}
		// The test responder encrypts by identity, so the fields come
		// back verbatim.
		if !bytes.Equal(key.KeyBytes, secret) || !bytes.Equal(key.EncryptedChallenge, challenge) {
			return errors.New("key response did not carry the responder's output")
		}
		if err := srv.enableEncryption(secret); err != nil {
			return err
		}

		err = srv.write(&packet.ClientboundLoginFinished{
			ProfileID: util.OfflineUUID("Alex"),
			Username:  "Alex",
		})
		if err != nil {
			return err
		}
		if _, err := srv.read(); err != nil { // login acknowledged
			return err
		}
		if _, err := srv.read(); err != nil { // client information
			return err
		}
		if err := srv.write(&packet.ClientboundFinishConfiguration{}); err != nil {
			return err
		}
		_, err = srv.read() // finish ack
		return err
	})

	responder := func(serverID string, gotKey, gotChallenge []byte) ([]byte, []byte, []byte, error) {
		if !bytes.Equal(gotKey, publicKey) || !bytes.Equal(gotChallenge, challenge) {
			return nil, nil, nil, errors.New("responder saw the wrong request")
		}
		return secret, secret, gotChallenge, nil
	}

	c, session, err := Login(testCtx(t), addr, LoginOptions{Username: "Alex", KeyResponder: responder})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if session.Username != "Alex" {
		t.Errorf("session username = %q", session.Username)
	}
	if got := c.State(); got != packet.Play {
		t.Errorf("state after login = %s, want Play", got)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}

func TestLoginEncryptionWithoutResponder(t *testing.T) {
	addr, errc := serveOnce(t, func(srv *fakeServer) error {
		if _, err := srv.read(); err != nil {
			return err
		}
		if _, err := srv.read(); err != nil {
			return err
		}
		return srv.write(&packet.ClientboundHello{PublicKey: []byte{1}, Challenge: []byte{2}})
	})

	_, _, err := Login(testCtx(t), addr, LoginOptions{Username: "Steve"})
	if err == nil || !strings.Contains(err.Error(), "key responder") {
		t.Fatalf("got %v, want a missing-responder error", err)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}

func TestLoginRejected(t *testing.T) {
	addr, errc := serveOnce(t, func(srv *fakeServer) error {
		if _, err := srv.read(); err != nil {
			return err
		}
		if _, err := srv.read(); err != nil {
			return err
		}
		return srv.write(&packet.ClientboundLoginDisconnect{Reason: `{"text":"banned"}`})
	})

	_, _, err := Login(testCtx(t), addr, LoginOptions{Username: "Steve"})
	if err == nil || !strings.Contains(err.Error(), "login rejected") {
		t.Fatalf("got %v, want a rejection error", err)
	}
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
}

func TestLoginRequiresUsername(t *testing.T) {
	_, _, err := Login(context.Background(), "127.0.0.1:1", LoginOptions{})
	if err == nil {
		t.Fatal("login without a username did not fail")
	}
}
