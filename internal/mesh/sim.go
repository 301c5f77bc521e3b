package mesh

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	MaxChannels = 40
	MaxContacts = 100
	maxHeard    = 16
)

// identityNamespace seeds deterministic simulated public keys.
//
//nolint:gochecknoglobals // fixed namespace UUID.
var identityNamespace = uuid.MustParse("6f0b7c1e-8d0a-4d7e-9c53-3c1f5b2e9a41")

// PubKeyFor derives a stable fake public key from a node name.
func PubKeyFor(name string) [PubKeySize]byte {
	var key [PubKeySize]byte
	a := uuid.NewSHA1(identityNamespace, []byte(name))
	b := uuid.NewSHA1(a, []byte(name))
	copy(key[:16], a[:])
	copy(key[16:], b[:])
	return key
}

// SentMessage records one outbound send attempt on a SimNode.
type SentMessage struct {
	Timestamp uint32
	To        string
	Group     bool
	Sender    string
	Text      string
	Result    SendResult
}

// SimNode is an in-memory Backend. It is not safe for concurrent use; the UI
// drives it from a single goroutine.
type SimNode struct {
	name      string
	contacts  []ContactInfo
	channels  []ChannelDetails
	heard     []AdvertPath
	blePin    uint32
	connected bool
	serial    bool
	rescue    bool

	// AdvertFails and GroupFails force the corresponding sends to fail.
	AdvertFails bool
	GroupFails  bool

	adverts int
	sent    []SentMessage
}

// NewSimNode creates a node with the serial link enabled and no channels.
func NewSimNode(name string) *SimNode {
	return &SimNode{name: name, serial: true}
}

// AddContact stores c, deriving a key from the name when none is set.
func (n *SimNode) AddContact(c ContactInfo) error {
	if len(n.contacts) >= MaxContacts {
		return ErrContactTableFull
	}
	if IsZeroPrefix(c.PubKey[:]) && c.Name != "" {
		c.PubKey = PubKeyFor(c.Name)
	}
	n.contacts = append(n.contacts, c)
	return nil
}

// RemoveContact deletes the first contact with exactly this name.
func (n *SimNode) RemoveContact(name string) error {
	for i := range n.contacts {
		if n.contacts[i].Name == name {
			n.contacts = append(n.contacts[:i], n.contacts[i+1:]...)
			return nil
		}
	}
	return ErrContactNotFound
}

// Hear records an advert as the newest entry of the recently heard list.
func (n *SimNode) Hear(a AdvertPath) {
	for i := range n.heard {
		if n.heard[i].PubKeyPrefix == a.PubKeyPrefix {
			n.heard = append(n.heard[:i], n.heard[i+1:]...)
			break
		}
	}
	n.heard = append([]AdvertPath{a}, n.heard...)
	if len(n.heard) > maxHeard {
		n.heard = n.heard[:maxHeard]
	}
}

// HearNode is Hear for a node identified by name only.
func (n *SimNode) HearNode(name string, pathLen uint8, ts uint32) {
	key := PubKeyFor(name)
	a := AdvertPath{Name: name, PathLen: pathLen, RecvTimestamp: ts}
	copy(a.PubKeyPrefix[:], key[:PrefixSize])
	n.Hear(a)
}

func (n *SimNode) GetRecentlyHeard(limit int) []AdvertPath {
	if limit > len(n.heard) {
		limit = len(n.heard)
	}
	if limit <= 0 {
		return nil
	}
	out := make([]AdvertPath, limit)
	copy(out, n.heard[:limit])
	return out
}

func (n *SimNode) GetChannel(idx int) (ChannelDetails, bool) {
	if idx < 0 || idx >= len(n.channels) {
		return ChannelDetails{}, false
	}
	return n.channels[idx], true
}

func (n *SimNode) AddChannel(name, psk string) error {
	if len(n.channels) >= MaxChannels {
		return ErrChannelTableFull
	}
	secret, err := base64.StdEncoding.DecodeString(psk)
	if err != nil || (len(secret) != 16 && len(secret) != 32) {
		return ErrInvalidPSK
	}
	n.channels = append(n.channels, ChannelDetails{Name: name, Secret: secret})
	logrus.Debugf("sim: added channel %q at index %d", name, len(n.channels)-1)
	return nil
}

func (n *SimNode) NumContacts() int { return len(n.contacts) }

func (n *SimNode) ContactByIdx(idx int) (ContactInfo, bool) {
	if idx < 0 || idx >= len(n.contacts) {
		return ContactInfo{}, false
	}
	return n.contacts[idx], true
}

func (n *SimNode) SearchContactsByPrefix(name string) (ContactInfo, bool) {
	for _, c := range n.contacts {
		if strings.HasPrefix(c.Name, name) {
			return c, true
		}
	}
	return ContactInfo{}, false
}

func (n *SimNode) LookupContactByPubKey(prefix []byte) (ContactInfo, bool) {
	if len(prefix) == 0 || len(prefix) > PubKeySize {
		return ContactInfo{}, false
	}
	for _, c := range n.contacts {
		if string(c.PubKey[:len(prefix)]) == string(prefix) {
			return c, true
		}
	}
	return ContactInfo{}, false
}

func (n *SimNode) SendMessage(c ContactInfo, ts uint32, _ uint8, text string) SendResult {
	res := SentDirect
	if c.OutPathLen < 0 {
		res = SentFlood
	}
	n.sent = append(n.sent, SentMessage{Timestamp: ts, To: c.Name, Text: text, Result: res})
	return res
}

func (n *SimNode) SendGroupMessage(ts uint32, ch ChannelDetails, sender, text string) bool {
	if n.GroupFails {
		return false
	}
	n.sent = append(n.sent, SentMessage{
		Timestamp: ts,
		To:        "#" + ch.Name,
		Group:     true,
		Sender:    sender,
		Text:      text,
		Result:    SentFlood,
	})
	return true
}

func (n *SimNode) Advert() bool {
	if n.AdvertFails {
		return false
	}
	n.adverts++
	return true
}

func (n *SimNode) NodeName() string { return n.name }
func (n *SimNode) SetNodeName(name string) { n.name = name }
func (n *SimNode) BLEPin() uint32 { return n.blePin }
func (n *SimNode) SetBLEPin(pin uint32) { n.blePin = pin }
func (n *SimNode) HasConnection() bool { return n.connected }
func (n *SimNode) SetConnected(v bool) { n.connected = v }
func (n *SimNode) SerialEnabled() bool { return n.serial }
func (n *SimNode) SetSerialEnabled(v bool) { n.serial = v }
func (n *SimNode) InRescue() bool { return n.rescue }
func (n *SimNode) Adverts() int { return n.adverts }

func (n *SimNode) EnterCLIRescue() {
	logrus.Debug("sim: entering CLI rescue mode")
	n.rescue = true
}

// Sent returns a copy of the send log.
func (n *SimNode) Sent() []SentMessage {
	return append([]SentMessage(nil), n.sent...)
}
