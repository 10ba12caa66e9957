// Package config holds the CLI configuration types.
package config

import "time"

// Mode represents the chosen operation (status ping or join).
type Mode string

const (
	ModePing Mode = "ping"
	ModeJoin Mode = "join"
)

// Config stores all parameters gathered from flags or the interactive
// prompts.
type Config struct {
	Mode     Mode
	Addr     string        // server address, host[:port]
	Username string        // join: offline-mode username
	Timeout  time.Duration // per-operation deadline
}
