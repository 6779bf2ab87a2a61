package notify

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subject struct {
	id string
}

func subjectKey(s subject) string { return s.id }

func TestListNotification_Add(t *testing.T) {
	t.Run("duplicate add keeps one element", func(t *testing.T) {
		n := NewList("new-sone-notification", subjectKey, false)

		n.Add(subject{id: "a"})
		n.Add(subject{id: "b"})
		n.Add(subject{id: "a"})

		assert.Equal(t, []string{"a", "b"}, n.ElementIDs())
		assert.False(t, n.IsEmpty())
	})

	t.Run("duplicate keyed by id not by value", func(t *testing.T) {
		type post struct{ id, text string }
		n := NewList("posts", func(p post) string { return p.id }, false)

		n.Add(post{id: "p1", text: "first"})
		n.Add(post{id: "p1", text: "edited"})

		require.Len(t, n.Elements(), 1)
		assert.Equal(t, "first", n.Elements()[0].text)
	})

	t.Run("elements are a copy", func(t *testing.T) {
		n := NewList("n", subjectKey, false)
		n.Add(subject{id: "a"})

		elements := n.Elements()
		elements[0] = subject{id: "changed"}

		assert.Equal(t, []string{"a"}, n.ElementIDs())
	})
}

func TestListNotification_Remove(t *testing.T) {
	n := NewList("n", subjectKey, false)
	n.Add(subject{id: "a"})
	n.Add(subject{id: "b"})
	n.Add(subject{id: "c"})

	n.Remove(subject{id: "b"})
	assert.Equal(t, []string{"a", "c"}, n.ElementIDs())

	n.Remove(subject{id: "missing"})
	assert.Equal(t, []string{"a", "c"}, n.ElementIDs())

	n.Remove(subject{id: "a"})
	n.Remove(subject{id: "c"})
	assert.True(t, n.IsEmpty())

	n.Add(subject{id: "b"})
	assert.Equal(t, []string{"b"}, n.ElementIDs(), "removed subjects can be added again")
}

func TestListNotification_Dismiss(t *testing.T) {
	t.Run("not dismissable is a no-op", func(t *testing.T) {
		n := NewList("new-post-notification", subjectKey, false)
		n.Add(subject{id: "a"})
		before := n.LastUpdated()

		assert.False(t, n.Dismiss())
		assert.False(t, n.IsEmpty())
		assert.Equal(t, []string{"a"}, n.ElementIDs())
		assert.Equal(t, before, n.LastUpdated())
	})

	t.Run("dismissable empties the list", func(t *testing.T) {
		n := NewList("sones-locked-notification", subjectKey, true)
		n.Add(subject{id: "a"})
		n.Add(subject{id: "b"})

		assert.True(t, n.Dismiss())
		assert.True(t, n.IsEmpty())
		assert.Empty(t, n.ElementIDs())
	})

	t.Run("dismissed notification can be filled again", func(t *testing.T) {
		n := NewList("n", subjectKey, true)
		n.Add(subject{id: "a"})
		n.Dismiss()

		n.Add(subject{id: "a"})
		assert.Equal(t, []string{"a"}, n.ElementIDs())
	})
}

func TestListNotification_Listener(t *testing.T) {
	n := NewList("n", subjectKey, true)
	var transitions []string
	n.observe(func(id string, empty bool) {
		transitions = append(transitions, fmt.Sprintf("%s:%v", id, empty))
	})

	n.Add(subject{id: "a"})
	n.Add(subject{id: "b"})
	n.Remove(subject{id: "a"})
	n.Remove(subject{id: "b"})
	n.Add(subject{id: "c"})
	n.Dismiss()
	n.Dismiss()

	assert.Equal(t, []string{"n:false", "n:true", "n:false", "n:true"}, transitions)
}

func TestListNotification_Concurrent(t *testing.T) {
	n := NewList("n", subjectKey, true)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s := subject{id: fmt.Sprintf("s-%d", i)}
				n.Add(s)
				_ = n.ElementIDs()
				_ = n.IsEmpty()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, n.ElementIDs(), 100)
}

func TestStatic(t *testing.T) {
	s := NewStatic("startup-notification", true)
	assert.True(t, s.IsEmpty())

	s.Show()
	assert.False(t, s.IsEmpty())
	assert.Nil(t, s.ElementIDs())

	assert.True(t, s.Dismiss())
	assert.True(t, s.IsEmpty())

	fixed := NewStatic("config-not-read-notification", false)
	fixed.Show()
	assert.False(t, fixed.Dismiss())
	assert.False(t, fixed.IsEmpty())
	fixed.Hide()
	assert.True(t, fixed.IsEmpty())
}
