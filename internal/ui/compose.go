package ui

import (
	"fmt"

	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/feedback"
	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/mesh"
)

const (
	composeCapacity = 240
	sentPopupMS     = 800
)

// composeBuffer is a bounded text buffer with a cursor in [0, len].
type composeBuffer struct {
	buf    []byte
	cursor int
}

func (b *composeBuffer) len() int { return len(b.buf) }
func (b *composeBuffer) String() string { return string(b.buf) }
func (b *composeBuffer) cursorPos() int { return b.cursor }
func (b *composeBuffer) reset() { b.buf, b.cursor = b.buf[:0], 0 }

// insert places ch at the cursor; a full buffer ignores it.
func (b *composeBuffer) insert(ch byte) bool {
	if len(b.buf) >= composeCapacity {
		return false
	}
	b.buf = append(b.buf, 0)
	copy(b.buf[b.cursor+1:], b.buf[b.cursor:])
	b.buf[b.cursor] = ch
	b.cursor++
	return true
}

// backspace deletes the byte before the cursor.
func (b *composeBuffer) backspace() bool {
	if b.cursor == 0 {
		return false
	}
	copy(b.buf[b.cursor-1:], b.buf[b.cursor:])
	b.buf = b.buf[:len(b.buf)-1]
	b.cursor--
	return true
}

func (b *composeBuffer) left() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor--
	return true
}

func (b *composeBuffer) right() bool {
	if b.cursor >= len(b.buf) {
		return false
	}
	b.cursor++
	return true
}

type composeScreen struct {
	h       host
	backend mesh.Backend
	rtc     RTC
	book    *recipientBook
	disp    *dispatcher

	text           composeBuffer
	recipient      Recipient
	sentPopupUntil int64
	dirty          bool
	slow           bool
}

func newCompose(h host, backend mesh.Backend, rtc RTC, book *recipientBook, opts Options) *composeScreen {
	return &composeScreen{
		h:         h,
		backend:   backend,
		rtc:       rtc,
		book:      book,
		disp:      &dispatcher{backend: backend, rtc: rtc, book: book},
		recipient: Recipient{Kind: RecipientChannel},
		dirty:     true,
		slow:      opts.slowRefresh(),
	}
}

func (c *composeScreen) isScreen() {}

// enter recomputes the recipient caches and selects channel 0.
func (c *composeScreen) enter() {
	c.book.refresh(c.backend, c.rtc.CurrentTime())
	c.recipient = Recipient{Kind: RecipientChannel}
	c.dirty = true
}

func (c *composeScreen) nextRecipient() {
	c.recipient = c.book.next(c.recipient, c.backend)
	c.dirty = true
}

func (c *composeScreen) prevRecipient() {
	c.recipient = c.book.prev(c.recipient, c.backend)
	c.dirty = true
}

func (c *composeScreen) Render(d display.Driver, now int64) int {
	d.SetColor(display.Yellow)
	d.SetTextSize(1)
	d.SetCursor(0, 0)
	d.Print("To: ")

	d.SetColor(display.Light)
	d.Print(d.TranslateUTF8ToBlocks(c.book.name(c.recipient, c.backend)))

	cnt := fmt.Sprintf(" %d/%d", c.text.len(), composeCapacity)
	d.SetCursor(d.Width()-d.TextWidth(cnt)-1, 0)
	d.Print(cnt)

	d.DrawRect(0, 10, d.Width(), 1)

	d.SetColor(display.Light)
	d.SetCursor(0, 14)
	d.PrintWordWrap(c.text.String(), d.Width())

	if now < c.sentPopupUntil {
		drawPopup(d, "Sent!")
		return 600
	}

	dirty := c.dirty
	c.dirty = false
	switch {
	case c.slow:
		return 2000
	case dirty:
		return 100
	default:
		return 1500
	}
}

func (c *composeScreen) HandleInput(k keys.Key) bool {
	empty := c.text.len() == 0
	switch k.Kind {
	case keys.Left:
		if empty {
			c.prevRecipient()
		} else {
			c.dirty = c.text.left() || c.dirty
		}
		return true
	case keys.Right:
		if empty {
			c.nextRecipient()
		} else {
			c.dirty = c.text.right() || c.dirty
		}
		return true
	case keys.Prev:
		if empty {
			c.prevRecipient()
		} else {
			c.h.gotoScreen(ScreenHome)
		}
		return true
	case keys.Next, keys.Select:
		c.nextRecipient()
		return true
	case keys.Enter:
		c.send()
		return true
	case keys.Backspace:
		c.dirty = c.text.backspace() || c.dirty
		return true
	case keys.Char:
		if k.Char >= 32 && k.Char <= 126 {
			c.dirty = c.text.insert(k.Char) || c.dirty
			return true
		}
	}
	return false
}

func (c *composeScreen) send() {
	if c.text.len() == 0 {
		c.h.showAlert("Empty", alertShortMS)
		return
	}
	out := c.disp.send(c.text.String(), c.recipient)
	c.h.showAlert(out.Alert, alertMS)
	if !out.OK() {
		return
	}
	c.h.notify(feedback.EventAck)
	c.sentPopupUntil = c.h.now() + sentPopupMS
	c.text.reset()
	c.dirty = true
}

func (c *composeScreen) Poll(int64) {}
