package render

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/gardenwatch/internal/poller"
	"github.com/jpalmerr/gardenwatch/internal/store"
)

func TestControls_ActivateOnce(t *testing.T) {
	var changes []string
	cs := NewControls(func(target poller.Target, label string) {
		changes = append(changes, string(target)+"="+label)
	})

	fired := 0
	cs.Attach(poller.TargetAge, poller.ReconnectLabel, func() { fired++ })

	label, ok := cs.pendingLabel(poller.TargetAge)
	require.True(t, ok)
	assert.Equal(t, poller.ReconnectLabel, label)

	assert.True(t, cs.Activate(poller.TargetAge))
	assert.False(t, cs.Activate(poller.TargetAge))
	assert.Equal(t, 1, fired)

	_, ok = cs.pendingLabel(poller.TargetAge)
	assert.False(t, ok)
	assert.Equal(t, []string{"age=Reconnect", "age="}, changes)
}

func TestControls_RemoveIsIdempotent(t *testing.T) {
	cs := NewControls(nil)
	ctl := cs.Attach(poller.TargetAge, "x", func() { t.Error("removed control fired") })

	ctl.Remove()
	ctl.Remove()

	assert.False(t, cs.Activate(poller.TargetAge))
}

func TestControls_ReplacedControlRemoveDoesNotAffectNew(t *testing.T) {
	cs := NewControls(nil)
	old := cs.Attach(poller.TargetAge, "old", nil)
	cs.Attach(poller.TargetAge, "new", nil)

	old.Remove()

	label, ok := cs.pendingLabel(poller.TargetAge)
	require.True(t, ok)
	assert.Equal(t, "new", label)
}

func TestControls_ActivateOldest(t *testing.T) {
	cs := NewControls(nil)
	var order []string
	cs.Attach(poller.TargetAge, "a", func() { order = append(order, "age") })
	cs.Attach(poller.TargetGarden, "g", func() { order = append(order, "garden") })

	assert.True(t, cs.ActivateOldest())
	assert.True(t, cs.ActivateOldest())
	assert.False(t, cs.ActivateOldest())
	assert.Equal(t, []string{"age", "garden"}, order)
}

func TestControls_ConcurrentActivateFiresOnce(t *testing.T) {
	cs := NewControls(nil)
	var mu sync.Mutex
	fired := 0
	cs.Attach(poller.TargetAge, "x", func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cs.Activate(poller.TargetAge)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fired)
}

func TestStoreRenderer_WritesElements(t *testing.T) {
	st := store.NewMemoryStore()
	r := NewStoreRenderer(st)

	r.SetText(poller.TargetAge, "Age: 42 ticks")
	r.SetStyle(poller.TargetPage, poller.DisconnectedStyle)

	age, ok := st.Get("age")
	require.True(t, ok)
	assert.Equal(t, "Age: 42 ticks", age.Text)

	page, ok := st.Get("page")
	require.True(t, ok)
	assert.Equal(t, poller.DisconnectedStyle, page.Style)
}

func TestStoreRenderer_SeedsEveryTarget(t *testing.T) {
	st := store.NewMemoryStore()
	NewStoreRenderer(st)

	all := st.GetAll()
	require.Len(t, all, len(poller.Targets))
	for _, target := range poller.Targets {
		el, ok := st.Get(string(target))
		require.True(t, ok, "target %s not seeded", target)
		assert.Empty(t, el.Text)
	}
}

func TestStoreRenderer_ControlLifecycle(t *testing.T) {
	st := store.NewMemoryStore()
	r := NewStoreRenderer(st)
	r.SetText(poller.TargetAge, poller.DisconnectedText)

	activated := false
	r.AttachControl(poller.TargetAge, poller.ReconnectLabel, func() { activated = true })

	age, _ := st.Get("age")
	assert.Equal(t, poller.ReconnectLabel, age.Control)
	assert.Equal(t, poller.DisconnectedText, age.Text)

	assert.False(t, r.Activate("garden"))
	assert.True(t, r.Activate("age"))
	assert.True(t, activated)

	age, _ = st.Get("age")
	assert.Empty(t, age.Control)
}

func TestMulti_FansOut(t *testing.T) {
	st1, st2 := store.NewMemoryStore(), store.NewMemoryStore()
	r1, r2 := NewStoreRenderer(st1), NewStoreRenderer(st2)
	m := Multi{r1, r2}

	m.SetText(poller.TargetGarden, "🌱")
	m.SetStyle(poller.TargetPage, "x")

	for _, st := range []*store.MemoryStore{st1, st2} {
		g, _ := st.Get("garden")
		assert.Equal(t, "🌱", g.Text)
		p, _ := st.Get("page")
		assert.Equal(t, "x", p.Style)
	}
}

func TestMulti_ControlRemovedEverywhere(t *testing.T) {
	st1, st2 := store.NewMemoryStore(), store.NewMemoryStore()
	r1, r2 := NewStoreRenderer(st1), NewStoreRenderer(st2)
	m := Multi{r1, r2}

	var ctl poller.Control
	ctl = m.AttachControl(poller.TargetAge, "Reconnect", func() { ctl.Remove() })

	assert.True(t, r2.Activate("age"))

	a1, _ := st1.Get("age")
	a2, _ := st2.Get("age")
	assert.Empty(t, a1.Control)
	assert.Empty(t, a2.Control)
	assert.False(t, r1.Activate("age"))
}

// brokenRenderer panics on every call.
type brokenRenderer struct{}

func (brokenRenderer) SetText(poller.Target, string)  { panic("text target gone") }
func (brokenRenderer) SetStyle(poller.Target, string) { panic("style target gone") }
func (brokenRenderer) AttachControl(poller.Target, string, func()) poller.Control {
	panic("control target gone")
}

func TestMulti_PanickingRendererDoesNotStarveOthers(t *testing.T) {
	first, last := store.NewMemoryStore(), store.NewMemoryStore()
	r1, r2 := NewStoreRenderer(first), NewStoreRenderer(last)
	m := Multi{r1, brokenRenderer{}, r2}

	require.NotPanics(t, func() {
		m.SetText(poller.TargetAge, poller.DisconnectedText)
		m.SetStyle(poller.TargetPage, poller.DisconnectedStyle)
	})
	for _, st := range []*store.MemoryStore{first, last} {
		age, _ := st.Get("age")
		assert.Equal(t, poller.DisconnectedText, age.Text)
		page, _ := st.Get("page")
		assert.Equal(t, poller.DisconnectedStyle, page.Style)
	}

	var ctl poller.Control
	require.NotPanics(t, func() {
		ctl = m.AttachControl(poller.TargetAge, poller.ReconnectLabel, nil)
	})
	a1, _ := first.Get("age")
	a2, _ := last.Get("age")
	assert.Equal(t, poller.ReconnectLabel, a1.Control)
	assert.Equal(t, poller.ReconnectLabel, a2.Control)

	// controls attached before and after the panic are still removable
	ctl.Remove()
	a1, _ = first.Get("age")
	a2, _ = last.Get("age")
	assert.Empty(t, a1.Control)
	assert.Empty(t, a2.Control)
}

func TestConsoleRenderer_WritesChangesOnly(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleRenderer(&buf)

	c.SetText(poller.TargetAge, "Age: 1 ticks")
	c.SetText(poller.TargetAge, "Age: 1 ticks")
	c.SetText(poller.TargetAge, "Age: 2 ticks")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "Age: 1 ticks"))
	assert.Contains(t, out, "Age: 2 ticks")
}

func TestConsoleRenderer_GardenVerbatim(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleRenderer(&buf)

	c.SetText(poller.TargetGarden, "🌱 🌻")

	assert.Contains(t, buf.String(), "🌱 🌻")
}

func TestConsoleRenderer_DisconnectAndActivate(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleRenderer(&buf)

	c.SetStyle(poller.TargetPage, poller.DisconnectedStyle)
	c.SetText(poller.TargetAge, poller.DisconnectedText)

	fired := false
	c.AttachControl(poller.TargetAge, poller.ReconnectLabel, func() { fired = true })

	out := buf.String()
	assert.Contains(t, out, "stale")
	assert.Contains(t, out, poller.DisconnectedText)
	assert.Contains(t, out, "[ Reconnect ]")

	assert.True(t, c.ActivatePending())
	assert.True(t, fired)
	assert.False(t, c.ActivatePending())

	c.SetStyle(poller.TargetPage, "")
	assert.Contains(t, buf.String(), "live")
}

func TestConsoleRenderer_IgnoresNonPageStyle(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleRenderer(&buf)

	c.SetStyle(poller.TargetGarden, "color: red")

	assert.Empty(t, buf.String())
}
