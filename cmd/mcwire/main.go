// Mcwire — CLI entry point.
//
// This tool speaks the Java Edition wire protocol directly: it can ping a
// server for its status line (server-list flow) or join it in offline
// mode and sit in the Play state answering keep-alives.
//
// It can be launched interactively (no flags) or non-interactively via
// CLI flags (-mode, -addr, -user, -timeout).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/mcwire/mcwire/internal/config"
	"github.com/mcwire/mcwire/internal/conn"
	"github.com/mcwire/mcwire/internal/packet"
	"github.com/mcwire/mcwire/internal/util"
)

var version = "dev"

func main() {
	// Root context — cancelled on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// CLI flags.
	mode := flag.String("mode", "", "Mode: ping or join")
	addr := flag.String("addr", "", "Server address, host[:port]")
	user := flag.String("user", "", "Username for offline-mode join")
	timeout := flag.Duration("timeout", 15*time.Second, "Per-operation deadline")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("Mcwire — v%s (protocol %d)", version, packet.ProtocolVersion))
	pterm.Println()

	cfg := config.Config{Mode: config.Mode(*mode), Addr: *addr, Username: *user, Timeout: *timeout}

	switch cfg.Mode {
	case "":
		// No -mode flag → interactive mode.
		runInteractive(ctx, cfg)

	case config.ModePing:
		if cfg.Addr == "" {
			util.Errorf("missing -addr for ping mode")
			os.Exit(1)
		}
		runPing(ctx, cfg)

	case config.ModeJoin:
		if cfg.Addr == "" || cfg.Username == "" {
			util.Errorf("join mode needs both -addr and -user")
			os.Exit(1)
		}
		runJoin(ctx, cfg)

	default:
		util.Errorf("invalid -mode: must be 'ping' or 'join'")
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Run modes
// ---------------------------------------------------------------------------

// runInteractive falls back to interactive prompts when no -mode flag is
// provided.
func runInteractive(ctx context.Context, cfg config.Config) {
	choice, _ := pterm.DefaultInteractiveSelect.
		WithOptions([]string{"Ping — Query a server's status", "Join — Log in to an offline-mode server"}).
		WithDefaultText("Select an operation").
		Show()

	pterm.Println()

	cfg.Addr = askText("Server address (host[:port])")
	if strings.HasPrefix(choice, "Ping") {
		cfg.Mode = config.ModePing
		runPing(ctx, cfg)
		return
	}
	cfg.Mode = config.ModeJoin
	cfg.Username = askText("Username")
	runJoin(ctx, cfg)
}

// runPing executes the server-list status flow and prints the result.
func runPing(ctx context.Context, cfg config.Config) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	status, latency, err := conn.Ping(ctx, cfg.Addr)
	if err != nil {
		util.Errorf("ping failed: %v", err)
		os.Exit(1)
	}

	util.Infof("%s — %s (protocol %d)", cfg.Addr, status.Version.Name, status.Version.Protocol)
	util.Infof("players: %d / %d", status.Players.Online, status.Players.Max)
	util.Infof("latency: %s", latency.Round(time.Millisecond))
	if desc := renderDescription(status.Description); desc != "" {
		util.Infof("motd: %s", desc)
	}
}

// runJoin logs in and stays connected, echoing keep-alives, until the
// server disconnects us or the context is cancelled.
func runJoin(ctx context.Context, cfg config.Config) {
	loginCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	c, session, err := conn.Login(loginCtx, cfg.Addr, conn.LoginOptions{Username: cfg.Username})
	cancel()
	if err != nil {
		util.Errorf("login failed: %v", err)
		os.Exit(1)
	}
	defer c.Close()

	// The login deadline does not apply to the open-ended session.
	c.SetDeadline(time.Time{})

	util.Infof("joined as %s (%s)", session.Username, session.ProfileID)
	util.StartStatsReporter(ctx)

	if err := playLoop(ctx, c); err != nil && ctx.Err() == nil {
		util.Errorf("connection lost: %v", err)
		os.Exit(1)
	}
	util.Infof("connection closed")
}

// playLoop answers the server's liveness probes and reports chat until
// the connection dies.
func playLoop(ctx context.Context, c *conn.Conn) error {
	p := conn.NewPump(c)

	go func() {
		for {
			pkt, err := p.Receive(ctx)
			if err != nil {
				return
			}
			switch in := pkt.(type) {
			case *packet.ClientboundPlayKeepAlive:
				resp := &packet.ServerboundPlayKeepAlive{}
				resp.KeepAliveID = in.KeepAliveID
				_ = p.Send(ctx, resp)
			case *packet.ClientboundPing:
				_ = p.Send(ctx, &packet.ServerboundPong{PingID: in.PingID})
			case *packet.ClientboundSystemChat:
				util.Infof("chat: %v", in.Content)
			case *packet.ClientboundPlayDisconnect:
				util.Warnf("server disconnect: %v", in.Reason)
			case *packet.ClientboundStartConfiguration:
				_ = p.Send(ctx, &packet.ServerboundConfigurationAcknowledged{})
			case *packet.ClientboundConfigKeepAlive:
				resp := &packet.ServerboundConfigKeepAlive{}
				resp.KeepAliveID = in.KeepAliveID
				_ = p.Send(ctx, resp)
			case *packet.ClientboundFinishConfiguration:
				// Reconfiguration done; head back to Play.
				_ = p.Send(ctx, &packet.ServerboundFinishConfiguration{})
			}
		}
	}()

	return p.Run(ctx)
}

// ---------------------------------------------------------------------------
// Helper Functions
// ---------------------------------------------------------------------------

// askText prompts until a non-empty line is entered.
func askText(prompt string) string {
	for {
		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(prompt).
			Show()

		if s := strings.TrimSpace(raw); s != "" {
			pterm.Println()
			return s
		}
		util.Warnf("input cannot be empty")
		pterm.Println()
	}
}

// renderDescription flattens the server-list description, which may be a
// bare JSON string or a text-component object with a "text" field.
func renderDescription(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Text
	}
	return ""
}
