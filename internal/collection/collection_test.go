package collection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type item struct{ id string }

func (i item) ID() string { return i.id }

func ids(c *Collection[item]) []string {
	out := make([]string, 0, c.Len())
	for _, it := range c.Items() {
		out = append(out, it.id)
	}
	return out
}

type recorder struct {
	log []string
}

func record(c *Collection[item]) *recorder {
	r := &recorder{}
	c.OnAdded(func(i item) { r.log = append(r.log, "+"+i.id) })
	c.OnRemoved(func(i item) { r.log = append(r.log, "-"+i.id) })
	return r
}

func TestCollection_AddIsIdentityUnique(t *testing.T) {
	c := New[item]()
	r := record(c)

	require.True(t, c.Add(item{"a"}))
	require.False(t, c.Add(item{"a"}))
	require.True(t, c.Add(item{"b"}))

	require.Equal(t, []string{"a", "b"}, ids(c))
	require.Equal(t, []string{"+a", "+b"}, r.log)
}

func TestCollection_Remove(t *testing.T) {
	c := New[item]()
	c.AddRange(item{"a"}, item{"b"}, item{"c"})
	r := record(c)

	require.True(t, c.Remove(item{"b"}))
	require.False(t, c.Remove(item{"b"}))
	require.Equal(t, []string{"a", "c"}, ids(c))
	require.Equal(t, []string{"-b"}, r.log)
}

func TestCollection_SetEmitsRemovedThenAdded(t *testing.T) {
	c := New[item]()
	c.AddRange(item{"a"}, item{"b"})
	r := record(c)

	require.NoError(t, c.Set(0, item{"z"}))
	require.Equal(t, []string{"z", "b"}, ids(c))
	require.Equal(t, []string{"-a", "+z"}, r.log)

	require.ErrorIs(t, c.Set(0, item{"b"}), ErrDuplicate)
	require.ErrorIs(t, c.Set(5, item{"q"}), ErrIndexOutOfRange)
}

func TestCollection_InsertAndRemoveAt(t *testing.T) {
	c := New[item]()
	c.AddRange(item{"a"}, item{"c"})

	ok, err := c.Insert(1, item{"b"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "c"}, ids(c))

	ok, err = c.Insert(0, item{"c"})
	require.NoError(t, err)
	require.False(t, ok, "present items are not moved")

	_, err = c.Insert(4, item{"d"})
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	removed, err := c.RemoveAt(0)
	require.NoError(t, err)
	require.Equal(t, "a", removed.id)
	require.Equal(t, []string{"b", "c"}, ids(c))

	_, err = c.RemoveAt(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCollection_ClearEmitsOneRemovedPerItem(t *testing.T) {
	c := New[item]()
	c.AddRange(item{"a"}, item{"b"}, item{"c"})
	r := record(c)

	c.Clear()
	require.Equal(t, 0, c.Len())
	require.Equal(t, []string{"-a", "-b", "-c"}, r.log)
}

func TestCollection_InternalVariantsAreSilent(t *testing.T) {
	c := New[item]()
	r := record(c)

	require.True(t, c.AddInternal(item{"a"}))
	require.True(t, c.AddInternal(item{"b"}))
	require.True(t, c.RemoveInternal(item{"a"}))
	require.Equal(t, []item{{"b"}}, c.ClearInternal())
	require.Empty(t, r.log)
}

func TestCollection_Lookup(t *testing.T) {
	c := New[item]()
	c.AddRange(item{"a"}, item{"b"})

	got, ok := c.Get("b")
	require.True(t, ok)
	require.Equal(t, "b", got.id)
	require.True(t, c.Contains("a"))
	require.Equal(t, 1, c.IndexOf("b"))
	require.Equal(t, -1, c.IndexOf("x"))

	at, err := c.At(1)
	require.NoError(t, err)
	require.Equal(t, "b", at.id)
}

// added - removed always equals the change in length, and no identity repeats.
func TestCollection_NotificationCountProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := New[item]()
		initial := rapid.IntRange(0, 5).Draw(rt, "initial")
		for i := range initial {
			c.AddInternal(item{fmt.Sprintf("seed%d", i)})
		}
		start := c.Len()

		added, removed := 0, 0
		c.OnAdded(func(item) { added++ })
		c.OnRemoved(func(item) { removed++ })

		key := rapid.SampledFrom([]string{"a", "b", "c", "d", "e", "seed0", "seed1"})
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for range steps {
			switch rapid.IntRange(0, 5).Draw(rt, "op") {
			case 0:
				c.Add(item{key.Draw(rt, "id")})
			case 1:
				c.Remove(item{key.Draw(rt, "id")})
			case 2:
				_, _ = c.Insert(rapid.IntRange(0, c.Len()).Draw(rt, "at"), item{key.Draw(rt, "id")})
			case 3:
				if c.Len() > 0 {
					_, _ = c.RemoveAt(rapid.IntRange(0, c.Len()-1).Draw(rt, "at"))
				}
			case 4:
				if c.Len() > 0 {
					_ = c.Set(rapid.IntRange(0, c.Len()-1).Draw(rt, "at"), item{key.Draw(rt, "id")})
				}
			case 5:
				if rapid.IntRange(0, 9).Draw(rt, "clear") == 0 {
					c.Clear()
				}
			}

			seen := make(map[string]bool)
			for _, id := range ids(c) {
				require.False(rt, seen[id], "duplicate %s", id)
				seen[id] = true
			}
		}

		require.Equal(rt, c.Len()-start, added-removed)
	})
}
