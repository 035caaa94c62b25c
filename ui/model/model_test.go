package model

import (
	"testing"
	"time"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

func TestImageModel_NotifiesSynchronously(t *testing.T) {
	m := NewImageModel()
	var seen []float64
	id := m.SubscribeChange(func() {
		f, _ := m.Data()
		seen = append(seen, f.At(0, 0))
	})
	if id == "" {
		t.Fatalf("expected subscription id")
	}
	m.SetData(frame.MustFromRows([][]float64{{7}}))
	if len(seen) != 1 || seen[0] != 7 {
		t.Fatalf("handler not run during SetData: %v", seen)
	}
	if m.Revision() != 1 {
		t.Fatalf("revision got=%d", m.Revision())
	}
	m.UnsubscribeChange(id)
	m.UnsubscribeChange(id)
	m.SetData(frame.MustFromRows([][]float64{{8}}))
	if len(seen) != 1 || m.Subscribers() != 0 {
		t.Fatalf("unsubscribed handler still called")
	}
}

func TestImageModel_UnsubscribeDuringNotify(t *testing.T) {
	m := NewImageModel()
	calls := 0
	var second string
	m.SubscribeChange(func() { calls++; m.UnsubscribeChange(second) })
	second = m.SubscribeChange(func() { calls += 10 })
	m.SetData(frame.MustFromRows([][]float64{{1}}))
	if calls != 1 {
		t.Fatalf("removed handler must not run, calls=%d", calls)
	}
}

func TestImageModel_UniqueIDs(t *testing.T) {
	m := NewImageModel()
	a := m.SubscribeChange(func() {})
	b := m.SubscribeChange(func() {})
	if a == b {
		t.Fatalf("ids must differ")
	}
}

func TestLiveModel_AttachLifecycle(t *testing.T) {
	m := NewLiveModel()
	base := time.Unix(0, 0)

	m.SetEnabled(true)
	m.OnTick(base)
	m.OnTick(base.Add(5 * time.Second))
	session, total := m.Values()
	if session != 5*time.Second || total != 5*time.Second {
		t.Fatalf("expected 5s session & total; got session=%v total=%v", session, total)
	}

	m.SetEnabled(false)
	m.OnTick(base.Add(6 * time.Second))
	m.OnTick(base.Add(9 * time.Second))
	session, total = m.Values()
	if session != 6*time.Second || total != 6*time.Second {
		t.Fatalf("detached ticks must not grow totals; got session=%v total=%v", session, total)
	}

	m.SetEnabled(true)
	m.OnTick(base.Add(10 * time.Second))
	m.OnTick(base.Add(13 * time.Second))
	session, total = m.Values()
	if session != 3*time.Second || total != 9*time.Second {
		t.Fatalf("second session expected 3s/9s got session=%v total=%v", session, total)
	}
}

func TestLiveModel_NilSafe(t *testing.T) {
	var m *LiveModel
	m.SetEnabled(true)
	m.OnTick(time.Now())
	if m.Enabled() {
		t.Fatalf("nil model must report disabled")
	}
}
