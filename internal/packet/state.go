package packet

// ProtocolVersion is the protocol revision this packet catalogue targets
// (Java Edition 1.21.4).
const ProtocolVersion = 769

// State is one phase of the connection lifecycle. Each state owns its own
// pair of id→schema tables, one per direction; a packet id means nothing
// outside its state. Transitions run forward only — Handshake branches to
// Status (a terminal side-branch for server-list pings) or Login, Login
// advances to Configuration, Configuration to Play — with one designed
// re-entry edge: the server can send the Play-state StartConfiguration
// packet to pull the client back into Configuration.
type State int

const (
	Handshake State = iota
	Status
	Login
	Configuration
	Play
)

func (s State) String() string {
	switch s {
	case Handshake:
		return "handshake"
	case Status:
		return "status"
	case Login:
		return "login"
	case Configuration:
		return "configuration"
	case Play:
		return "play"
	}
	return "unknown"
}

// Direction says which peer a packet is bound for.
type Direction int

const (
	Serverbound Direction = iota
	Clientbound
)

func (d Direction) String() string {
	if d == Serverbound {
		return "serverbound"
	}
	return "clientbound"
}
