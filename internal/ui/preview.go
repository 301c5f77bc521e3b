package ui

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/meshcore-dev/companion-ui/internal/display"
	"github.com/meshcore-dev/companion-ui/internal/keys"
)

const (
	unreadCapacity = 32
	maxOriginLen   = 61
	maxBodyLen     = 77

	// PathDirect is the path length the backend reports for a zero-hop message.
	PathDirect = 0xFF
)

// UnreadEntry is one queued message preview.
type UnreadEntry struct {
	Timestamp uint32
	Origin    string
	Body      string
}

// OriginLabel formats the sender line: "(D) name:" for direct, "(hops) name:" otherwise.
func OriginLabel(pathLen uint8, from string) string {
	if pathLen == PathDirect {
		return clip(fmt.Sprintf("(D) %s:", from), maxOriginLen)
	}
	return clip(fmt.Sprintf("(%d) %s:", pathLen, from), maxOriginLen)
}

// unreadQueue is a fixed-capacity FIFO. Only the head is ever shown.
type unreadQueue struct {
	entries [unreadCapacity]UnreadEntry
	n       int
}

// push appends e, or drops it when the queue is full.
func (q *unreadQueue) push(e UnreadEntry) bool {
	if q.n >= unreadCapacity {
		logrus.Debugf("ui: unread queue full, dropping message from %q", e.Origin)
		return false
	}
	q.entries[q.n] = e
	q.n++
	return true
}

func (q *unreadQueue) head() (UnreadEntry, bool) {
	if q.n == 0 {
		return UnreadEntry{}, false
	}
	return q.entries[0], true
}

// pop removes the head, shifting the rest forward.
func (q *unreadQueue) pop() {
	if q.n == 0 {
		return
	}
	copy(q.entries[:q.n-1], q.entries[1:q.n])
	q.n--
	q.entries[q.n] = UnreadEntry{}
}

func (q *unreadQueue) clear() {
	q.entries = [unreadCapacity]UnreadEntry{}
	q.n = 0
}

func (q *unreadQueue) len() int { return q.n }

type previewScreen struct {
	h      host
	rtc    RTC
	unread unreadQueue
	slow   bool
}

func newPreview(h host, rtc RTC, opts Options) *previewScreen {
	return &previewScreen{h: h, rtc: rtc, slow: opts.slowRefresh()}
}

func (p *previewScreen) isScreen() {}

func (p *previewScreen) add(pathLen uint8, from, text string) {
	p.unread.push(UnreadEntry{
		Timestamp: p.rtc.CurrentTime(),
		Origin:    OriginLabel(pathLen, from),
		Body:      clip(text, maxBodyLen),
	})
}

func (p *previewScreen) Render(d display.Driver, _ int64) int {
	d.SetCursor(0, 0)
	d.SetTextSize(1)
	d.SetColor(display.Green)
	d.Print(fmt.Sprintf("Unread: %d", p.unread.len()))

	if e, ok := p.unread.head(); ok {
		ts := age(p.rtc.CurrentTime(), e.Timestamp)
		d.SetCursor(d.Width()-d.TextWidth(ts)-2, 0)
		d.Print(ts)

		d.DrawRect(0, 11, d.Width(), 1)

		d.SetCursor(0, 14)
		d.SetColor(display.Yellow)
		d.Print(d.TranslateUTF8ToBlocks(e.Origin))

		d.SetCursor(0, 25)
		d.SetColor(display.Light)
		d.PrintWordWrap(d.TranslateUTF8ToBlocks(e.Body), d.Width())
	}

	if p.slow {
		return 10000
	}
	return 1000
}

func (p *previewScreen) HandleInput(k keys.Key) bool {
	switch k.Kind {
	case keys.Next, keys.Right:
		p.unread.pop()
		if p.unread.len() == 0 {
			p.h.gotoScreen(ScreenHome)
		}
		return true
	case keys.Enter:
		p.unread.clear()
		p.h.gotoScreen(ScreenHome)
		return true
	}
	return false
}

func (p *previewScreen) Poll(int64) {}
