package ui

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/meshcore-dev/companion-ui/internal/mesh"
)

const (
	DefaultChannelName = "Public"
	DefaultChannelPSK  = "izOH6cXN6mrJ5e26oRXNcg=="

	maxSenderNameLen = 31
	unknownName      = "Unknown"
)

// RecipientKind is the ring segment a Recipient points into.
type RecipientKind uint8

const (
	RecipientContact RecipientKind = iota
	RecipientChannel
	RecipientBroadcast
)

func (k RecipientKind) String() string {
	switch k {
	case RecipientContact:
		return "contact"
	case RecipientChannel:
		return "channel"
	default:
		return "broadcast"
	}
}

// Recipient selects a destination. For contacts Index runs over recent
// senders first, then recent contacts; for channels it is the backend index.
type Recipient struct {
	Kind  RecipientKind
	Index int
}

func (r Recipient) String() string {
	if r.Kind == RecipientBroadcast {
		return r.Kind.String()
	}
	return fmt.Sprintf("%s[%d]", r.Kind, r.Index)
}

// RecentSender is someone who messaged us recently.
type RecentSender struct {
	Name         string
	PubKeyPrefix [mesh.PrefixSize]byte
	LastMsgTime  uint32
}

// recipientBook holds the two bounded caches behind the contact segment.
type recipientBook struct {
	capacity int
	senders  []RecentSender    // most recent first
	contacts []mesh.AdvertPath // heard adverts, then established contacts
}

func newRecipientBook(capacity int) *recipientBook {
	if capacity < 1 {
		capacity = 1
	}
	return &recipientBook{capacity: capacity}
}

// clone copies the sender cache. The contact cache starts empty until refresh.
func (b *recipientBook) clone() *recipientBook {
	return &recipientBook{capacity: b.capacity, senders: append([]RecentSender(nil), b.senders...)}
}

func (b *recipientBook) total() int { return len(b.senders) + len(b.contacts) }

// addSender moves name to the front, evicting the least recent sender when full.
func (b *recipientBook) addSender(backend mesh.Backend, name string, now uint32) {
	name = clip(name, maxSenderNameLen)
	for i := range b.senders {
		if b.senders[i].Name == name {
			s := b.senders[i]
			s.LastMsgTime = now
			copy(b.senders[1:i+1], b.senders[:i])
			b.senders[0] = s
			return
		}
	}

	s := RecentSender{Name: name, LastMsgTime: now}
	if c, ok := backend.SearchContactsByPrefix(name); ok {
		s.PubKeyPrefix = c.Prefix()
	}
	if len(b.senders) >= b.capacity {
		logrus.Debugf("ui: evicting recent sender %q", b.senders[len(b.senders)-1].Name)
		b.senders = b.senders[:b.capacity-1]
	}
	b.senders = append([]RecentSender{s}, b.senders...)
}

func (b *recipientBook) isSender(prefix [mesh.PrefixSize]byte) bool {
	for _, s := range b.senders {
		if !mesh.IsZeroPrefix(s.PubKeyPrefix[:]) && s.PubKeyPrefix == prefix {
			return true
		}
	}
	return false
}

func (b *recipientBook) hasContact(prefix [mesh.PrefixSize]byte) bool {
	for _, c := range b.contacts {
		if mesh.SamePrefix(c.PubKeyPrefix[:], prefix[:]) {
			return true
		}
	}
	return false
}

// refresh rebuilds the contact cache from live backend state and makes sure
// the default public channel exists.
func (b *recipientBook) refresh(backend mesh.Backend, now uint32) {
	b.contacts = b.contacts[:0]
	for _, a := range backend.GetRecentlyHeard(b.capacity) {
		if !a.Valid() || b.isSender(a.PubKeyPrefix) {
			continue
		}
		b.contacts = append(b.contacts, a)
	}

	for i := 0; i < backend.NumContacts() && len(b.contacts) < b.capacity; i++ {
		c, ok := backend.ContactByIdx(i)
		if !ok {
			continue
		}
		prefix := c.Prefix()
		if mesh.IsZeroPrefix(prefix[:]) || b.hasContact(prefix) || b.isSender(prefix) {
			continue
		}
		entry := mesh.AdvertPath{Name: c.Name, PubKeyPrefix: prefix, RecvTimestamp: now}
		if c.OutPathLen > 0 && int(c.OutPathLen) <= mesh.MaxPathSize {
			entry.PathLen = uint8(c.OutPathLen)
			entry.Path = append([]byte(nil), c.OutPath...)
		}
		b.contacts = append(b.contacts, entry)
	}

	ensureDefaultChannel(backend)
}

func ensureDefaultChannel(backend mesh.Backend) {
	for i := 0; ; i++ {
		ch, ok := backend.GetChannel(i)
		if !ok {
			break
		}
		if ch.Name == DefaultChannelName {
			return
		}
	}
	if err := backend.AddChannel(DefaultChannelName, DefaultChannelPSK); err != nil {
		logrus.Debugf("ui: could not add default channel: %v", err)
	}
}

func channelExists(backend mesh.Backend, idx int) bool {
	_, ok := backend.GetChannel(idx)
	return ok
}

// lastChannel probes from 0 and returns the last valid index, or -1.
func lastChannel(backend mesh.Backend) int {
	i := -1
	for channelExists(backend, i+1) {
		i++
	}
	return i
}

func (b *recipientBook) firstChannel(backend mesh.Backend) Recipient {
	if channelExists(backend, 0) {
		return Recipient{Kind: RecipientChannel}
	}
	return Recipient{Kind: RecipientBroadcast}
}

// next steps forward around Contacts, Channels, Broadcast.
func (b *recipientBook) next(r Recipient, backend mesh.Backend) Recipient {
	switch r.Kind {
	case RecipientContact:
		if r.Index+1 < b.total() {
			return Recipient{Kind: RecipientContact, Index: r.Index + 1}
		}
		return b.firstChannel(backend)
	case RecipientChannel:
		if channelExists(backend, r.Index+1) {
			return Recipient{Kind: RecipientChannel, Index: r.Index + 1}
		}
		return Recipient{Kind: RecipientBroadcast}
	default:
		if b.total() > 0 {
			return Recipient{Kind: RecipientContact}
		}
		return b.firstChannel(backend)
	}
}

// prev is the exact mirror of next.
func (b *recipientBook) prev(r Recipient, backend mesh.Backend) Recipient {
	switch r.Kind {
	case RecipientContact:
		if r.Index > 0 {
			return Recipient{Kind: RecipientContact, Index: r.Index - 1}
		}
		return Recipient{Kind: RecipientBroadcast}
	case RecipientChannel:
		if r.Index > 0 {
			return Recipient{Kind: RecipientChannel, Index: r.Index - 1}
		}
		if b.total() > 0 {
			return Recipient{Kind: RecipientContact, Index: b.total() - 1}
		}
		return Recipient{Kind: RecipientBroadcast}
	default:
		if last := lastChannel(backend); last >= 0 {
			return Recipient{Kind: RecipientChannel, Index: last}
		}
		if b.total() > 0 {
			return Recipient{Kind: RecipientContact, Index: b.total() - 1}
		}
		return Recipient{Kind: RecipientBroadcast}
	}
}

// contactID shows the first three key bytes, or NoKey when the key is unset.
func contactID(prefix [mesh.PrefixSize]byte) string {
	if mesh.IsZeroPrefix(prefix[:6]) {
		return "NoKey"
	}
	return fmt.Sprintf("%02X%02X%02X", prefix[0], prefix[1], prefix[2])
}

func displayName(name string, prefix [mesh.PrefixSize]byte) string {
	if name == "" || name == unknownName {
		return contactID(prefix)
	}
	return name
}

// name is the label shown after "To:". Recent senders carry a trailing '*'.
func (b *recipientBook) name(r Recipient, backend mesh.Backend) string {
	switch r.Kind {
	case RecipientContact:
		if r.Index < 0 {
			return unknownName
		}
		if r.Index < len(b.senders) {
			s := b.senders[r.Index]
			return clip(displayName(s.Name, s.PubKeyPrefix)+"*", maxSenderNameLen)
		}
		if i := r.Index - len(b.senders); i < len(b.contacts) {
			c := b.contacts[i]
			return clip(displayName(c.Name, c.PubKeyPrefix), maxSenderNameLen)
		}
		return unknownName
	case RecipientChannel:
		ch, ok := backend.GetChannel(r.Index)
		switch {
		case !ok:
			return fmt.Sprintf("#NoChannel(%d)", r.Index)
		case ch.Name != "":
			return clip("#"+ch.Name, maxSenderNameLen)
		case r.Index == 0:
			return "#" + DefaultChannelName
		default:
			return fmt.Sprintf("#Ch%d", r.Index)
		}
	default:
		return "Broadcast"
	}
}
