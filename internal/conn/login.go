package conn

import (
	"context"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mcwire/mcwire/internal/packet"
	"github.com/mcwire/mcwire/internal/util"
)

// KeyResponder answers an encryption request. It is the boundary to the
// external asymmetric key exchange: given the server's public key and
// challenge it must produce the 16-byte shared secret plus the secret
// and challenge encrypted under that public key. Login with no responder
// fails cleanly when a server demands encryption.
type KeyResponder func(serverID string, publicKey, challenge []byte) (secret, encryptedSecret, encryptedChallenge []byte, err error)

// LoginOptions configures a login flow.
type LoginOptions struct {
	Username     string
	KeyResponder KeyResponder // nil means offline-mode only
	Locale       string       // defaults to "en_us"
	ViewDistance int8         // defaults to 8
}

// Session is the identity the server settled on after a completed login.
type Session struct {
	ProfileID uuid.UUID
	Username  string
}

// Login dials addr and walks the lifecycle from Handshake through Login
// and Configuration until the connection reaches Play, answering
// compression, encryption, and keep-alive along the way. On success the
// returned Conn is live in the Play state and owned by the caller.
func Login(ctx context.Context, addr string, opts LoginOptions) (*Conn, *Session, error) {
	if opts.Username == "" {
		return nil, nil, errors.New("username is required")
	}
	if opts.Locale == "" {
		opts.Locale = "en_us"
	}
	if opts.ViewDistance == 0 {
		opts.ViewDistance = 8
	}

	host, port, err := splitAddr(addr)
	if err != nil {
		return nil, nil, err
	}
	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return nil, nil, errors.Wrap(err, "dial")
	}
	c := NewClient(raw)
	if deadline, ok := ctx.Deadline(); ok {
		c.SetDeadline(deadline)
	}

	session, err := c.login(host, port, opts)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, session, nil
}

func (c *Conn) login(host string, port uint16, opts LoginOptions) (*Session, error) {
	err := c.WritePacket(&packet.ServerboundIntention{
		ProtocolVersion: packet.ProtocolVersion,
		HostName:        host,
		Port:            port,
		Intent:          packet.IntentLogin,
	})
	if err != nil {
		return nil, err
	}
	err = c.WritePacket(&packet.ServerboundHello{
		Name:      opts.Username,
		ProfileID: util.OfflineUUID(opts.Username),
	})
	if err != nil {
		return nil, err
	}

	var session *Session
	for {
		p, err := c.ReadPacket()
		if err != nil {
			return nil, err
		}

		switch pkt := p.(type) {
		case *packet.ClientboundHello:
			if opts.KeyResponder == nil {
				return nil, errors.New("server requires encryption and no key responder is configured")
			}
			secret, encSecret, encChallenge, err := opts.KeyResponder(pkt.ServerID, pkt.PublicKey, pkt.Challenge)
			if err != nil {
				return nil, errors.Wrap(err, "key exchange")
			}
			err = c.WritePacket(&packet.ServerboundKey{
				KeyBytes:           encSecret,
				EncryptedChallenge: encChallenge,
			})
			if err != nil {
				return nil, err
			}
			// Everything after our key response is encrypted, both ways.
			if err := c.EnableEncryption(secret); err != nil {
				return nil, err
			}

		case *packet.ClientboundLoginCompression:
			c.SetCompressionThreshold(int(pkt.Threshold))

		case *packet.ClientboundLoginDisconnect:
			return nil, errors.Errorf("login rejected: %s", pkt.Reason)

		case *packet.ClientboundLoginFinished:
			session = &Session{ProfileID: pkt.ProfileID, Username: pkt.Username}
			if err := c.WritePacket(&packet.ServerboundLoginAcknowledged{}); err != nil {
				return nil, err
			}
			err = c.WritePacket(&packet.ServerboundClientInformation{
				Locale:             opts.Locale,
				ViewDistance:       opts.ViewDistance,
				ChatVisibility:     packet.ChatFull,
				ChatColors:         true,
				ModelCustomization: 0x7f,
				MainHand:           packet.ArmRight,
			})
			if err != nil {
				return nil, err
			}

		case *packet.ClientboundRegistryData:
			util.Debugf("registry %s: %d entries", pkt.Registry, len(pkt.Entries))

		case *packet.ClientboundConfigCustomPayload:
			util.Debugf("plugin channel %s: %d bytes", pkt.Identifier, len(pkt.Data))

		case *packet.ClientboundConfigKeepAlive:
			resp := &packet.ServerboundConfigKeepAlive{}
			resp.KeepAliveID = pkt.KeepAliveID
			if err := c.WritePacket(resp); err != nil {
				return nil, err
			}

		case *packet.ClientboundConfigDisconnect:
			return nil, errors.Errorf("disconnected during configuration: %s", pkt.Reason)

		case *packet.ClientboundFinishConfiguration:
			if err := c.WritePacket(&packet.ServerboundFinishConfiguration{}); err != nil {
				return nil, err
			}
			if session == nil {
				return nil, errors.New("configuration finished before login success")
			}
			return session, nil

		default:
			util.Debugf("ignoring %T during login", p)
		}
	}
}
