//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshcore-dev/companion-ui/internal/keys"
)

func TestUnreadQueue_FIFO(t *testing.T) {
	for _, k := range []int{1, 5, unreadCapacity} {
		t.Run(fmt.Sprint(k), func(t *testing.T) {
			var q unreadQueue
			for i := range k {
				require.True(t, q.push(UnreadEntry{Body: fmt.Sprint(i)}))
			}
			for i := range k {
				head, ok := q.head()
				require.True(t, ok)
				assert.Equal(t, fmt.Sprint(i), head.Body)
				q.pop()
			}
			assert.Equal(t, 0, q.len())
			_, ok := q.head()
			assert.False(t, ok)
		})
	}
}

func TestUnreadQueue_OverflowDropsNewest(t *testing.T) {
	var q unreadQueue
	for i := range unreadCapacity + 8 {
		q.push(UnreadEntry{Body: fmt.Sprint(i)})
	}
	require.Equal(t, unreadCapacity, q.len())
	for i := range unreadCapacity {
		head, _ := q.head()
		assert.Equal(t, fmt.Sprint(i), head.Body)
		q.pop()
	}
	q.pop()
	assert.Equal(t, 0, q.len(), "pop on empty is a no-op")
}

func TestOriginLabel(t *testing.T) {
	assert.Equal(t, "(D) bob:", OriginLabel(PathDirect, "bob"))
	assert.Equal(t, "(0) bob:", OriginLabel(0, "bob"))
	assert.Equal(t, "(3) bob:", OriginLabel(3, "bob"))
	assert.Len(t, OriginLabel(3, strings.Repeat("n", 100)), maxOriginLen)
}

func TestPreview_BodyIsClipped(t *testing.T) {
	r := newRig(t, testOptions())
	r.c.preview.add(1, "bob", strings.Repeat("é", 60))

	head, ok := r.c.preview.unread.head()
	require.True(t, ok)
	assert.LessOrEqual(t, len(head.Body), maxBodyLen)
	assert.True(t, strings.HasPrefix(strings.Repeat("é", 60), head.Body), "clipped on a rune boundary")
	assert.Equal(t, uint32(bootSecs), head.Timestamp)
}

func TestPreview_AcknowledgeAndClear(t *testing.T) {
	r := newRig(t, testOptions())
	r.toHome()
	r.c.NewMessage(1, "bob", "first", 3)
	r.c.NewMessage(1, "carol", "second", 3)
	r.c.NewMessage(1, "dave", "third", 3)

	r.advance(tickMS)
	assert.True(t, r.canvas.Contains("Unread: 3"))
	assert.True(t, r.canvas.Contains("first"))

	r.typeKeys("\x1b[C")
	assert.Equal(t, ScreenPreview, r.c.Current())
	assert.True(t, r.canvas.Contains("Unread: 2"))
	assert.True(t, r.canvas.Contains("(1) carol:"))

	r.typeKeys("\r")
	assert.Equal(t, ScreenHome, r.c.Current())
	assert.Equal(t, 0, r.c.preview.unread.len())
}

func TestPreview_IgnoresOtherKeys(t *testing.T) {
	r := newRig(t, testOptions())
	r.c.preview.add(1, "bob", "hi")
	for _, k := range []keys.Key{keys.KeyPrev, keys.KeyLeft, keys.KeySelect, keys.CharKey('a')} {
		assert.False(t, r.c.preview.HandleInput(k), k.String())
	}
	assert.Equal(t, 1, r.c.preview.unread.len())
}

func TestPreview_RefreshHint(t *testing.T) {
	r := newRig(t, testOptions())
	d := r.canvas
	d.StartFrame()
	assert.Equal(t, 1000, r.c.preview.Render(d, 0))

	opts := testOptions()
	opts.EInk = true
	r = newRig(t, opts)
	assert.Equal(t, 10000, r.c.preview.Render(r.canvas, 0))
}
