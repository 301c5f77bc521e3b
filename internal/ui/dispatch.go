package ui

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/meshcore-dev/companion-ui/internal/mesh"
)

// SendStatus is how a dispatch ended.
type SendStatus uint8

const (
	SendRejected SendStatus = iota
	SentFlood
	SentDirect
	SentGroup
	SentBroadcast
)

// SendOutcome is the result of one dispatch: a status, the alert to show and,
// for rejections, the reason.
type SendOutcome struct {
	Status SendStatus
	Alert  string
	Err    error
}

// OK reports whether the backend accepted the message.
func (o SendOutcome) OK() bool { return o.Status != SendRejected }

func rejected(alertText string, err error) SendOutcome {
	return SendOutcome{Status: SendRejected, Alert: alertText, Err: err}
}

// dispatcher turns a composed text plus a recipient into backend calls.
type dispatcher struct {
	backend mesh.Backend
	rtc     RTC
	book    *recipientBook
}

func (d *dispatcher) send(text string, r Recipient) SendOutcome {
	out := d.dispatch(text, r)
	if out.OK() {
		logrus.Debugf("ui: sent %d bytes to %s: %s", len(text), r, out.Alert)
	} else {
		logrus.Warnf("ui: send to %s failed: %v", r, out.Err)
	}
	return out
}

func (d *dispatcher) dispatch(text string, r Recipient) SendOutcome {
	if text == "" {
		return rejected("Empty message", mesh.ErrEmptyText)
	}
	if len(text) > mesh.MaxTextLen {
		return rejected("Message too long", mesh.ErrTextTooLong)
	}
	ts := d.rtc.CurrentTime()

	switch r.Kind {
	case RecipientContact:
		contact, ok := d.resolveContact(r.Index)
		if !ok {
			return rejected("Contact not found", mesh.ErrContactNotFound)
		}
		switch d.backend.SendMessage(contact, ts, 0, text) {
		case mesh.SentFlood:
			return SendOutcome{Status: SentFlood, Alert: "Sent (flood)"}
		case mesh.SentDirect:
			return SendOutcome{Status: SentDirect, Alert: "Sent (direct)"}
		default:
			return rejected("Send failed", fmt.Errorf("%s: %w", contact.Name, mesh.ErrSendFailed))
		}

	case RecipientChannel:
		ch, ok := d.backend.GetChannel(r.Index)
		if !ok {
			return rejected(fmt.Sprintf("No channel %d", r.Index), mesh.ChannelError{Index: r.Index, Err: mesh.ErrNoChannel})
		}
		if !d.backend.SendGroupMessage(ts, ch, d.backend.NodeName(), text) {
			return rejected("Group send failed", mesh.ChannelError{Index: r.Index, Err: mesh.ErrSendFailed})
		}
		name := ch.Name
		if name == "" {
			name = "Channel"
		}
		return SendOutcome{Status: SentGroup, Alert: clip("Sent to #"+name, maxAlertLen)}

	case RecipientBroadcast:
		if ch, ok := d.backend.GetChannel(0); ok && d.backend.SendGroupMessage(ts, ch, d.backend.NodeName(), text) {
			return SendOutcome{Status: SentBroadcast, Alert: "Broadcast sent"}
		}
		return rejected("No broadcast method", mesh.ErrNoBroadcastMethod)
	}
	return rejected("Invalid recipient", fmt.Errorf("recipient kind %d", r.Kind))
}

// resolveContact looks recent senders up by name and recent contacts by key prefix.
func (d *dispatcher) resolveContact(idx int) (mesh.ContactInfo, bool) {
	b := d.book
	if idx < 0 {
		return mesh.ContactInfo{}, false
	}
	if idx < len(b.senders) {
		return d.backend.SearchContactsByPrefix(b.senders[idx].Name)
	}
	if i := idx - len(b.senders); i < len(b.contacts) {
		return d.backend.LookupContactByPubKey(b.contacts[i].PubKeyPrefix[:6])
	}
	return mesh.ContactInfo{}, false
}
