// Package mesh describes the messaging backend the UI talks to and ships an
// in-memory node used by the simulator, scenarios and tests.
package mesh

import "bytes"

const (
	PubKeySize = 32
	// PrefixSize is how many public-key bytes identify a recently heard node.
	PrefixSize  = 7
	MaxPathSize = 64
	MaxNameLen  = 32

	// MaxTextLen is the longest text payload the backend accepts in one message.
	MaxTextLen = 160

	// OutPathUnknown marks a contact with no learned route; sends to it flood.
	OutPathUnknown int8 = -1
)

// ContactInfo is an established contact as stored by the backend.
type ContactInfo struct {
	Name       string
	PubKey     [PubKeySize]byte
	OutPathLen int8
	OutPath    []byte
	LastAdvert uint32
}

// Prefix returns the first PrefixSize bytes of the public key.
func (c ContactInfo) Prefix() [PrefixSize]byte {
	var p [PrefixSize]byte
	copy(p[:], c.PubKey[:PrefixSize])
	return p
}

// AdvertPath is a recently heard advert, or a contact projected into the same shape.
type AdvertPath struct {
	Name          string
	PubKeyPrefix  [PrefixSize]byte
	Path          []byte
	PathLen       uint8
	RecvTimestamp uint32
}

// Valid reports whether the prefix carries any key material.
func (a AdvertPath) Valid() bool {
	return !IsZeroPrefix(a.PubKeyPrefix[:])
}

// IsZeroPrefix reports whether every byte of p is zero.
func IsZeroPrefix(p []byte) bool {
	for _, b := range p {
		if b != 0 {
			return false
		}
	}
	return true
}

// SamePrefix compares the first PrefixSize bytes of two keys.
func SamePrefix(a, b []byte) bool {
	if len(a) < PrefixSize || len(b) < PrefixSize {
		return false
	}
	return bytes.Equal(a[:PrefixSize], b[:PrefixSize])
}

// ChannelDetails is a group channel: a display name and its decoded shared secret.
type ChannelDetails struct {
	Name   string
	Secret []byte
}

// SendResult is what the backend reports for a direct message.
type SendResult uint8

const (
	SendFailed SendResult = iota
	SentFlood
	SentDirect
)

func (r SendResult) String() string {
	switch r {
	case SentFlood:
		return "flood"
	case SentDirect:
		return "direct"
	default:
		return "failed"
	}
}

// Backend is the messaging side of the node as seen from the UI.
type Backend interface {
	// GetRecentlyHeard returns up to limit adverts, newest first.
	GetRecentlyHeard(limit int) []AdvertPath
	GetChannel(idx int) (ChannelDetails, bool)
	// AddChannel registers a channel from its base64 pre-shared key.
	AddChannel(name, psk string) error

	NumContacts() int
	ContactByIdx(idx int) (ContactInfo, bool)
	// SearchContactsByPrefix returns the first contact whose name starts with name.
	SearchContactsByPrefix(name string) (ContactInfo, bool)
	LookupContactByPubKey(prefix []byte) (ContactInfo, bool)

	SendMessage(contact ContactInfo, timestamp uint32, attempt uint8, text string) SendResult
	SendGroupMessage(timestamp uint32, channel ChannelDetails, senderName, text string) bool
	Advert() bool

	NodeName() string
	BLEPin() uint32
	HasConnection() bool
	SerialEnabled() bool
	SetSerialEnabled(enabled bool)
	EnterCLIRescue()
}
