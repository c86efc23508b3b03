package net

import (
	"net"
	"testing"

	"go.uber.org/zap"
)

func TestSessionStoreOrderAndRemove(t *testing.T) {
	st := NewSessionStore()
	var all []*Session
	for id := uint64(1); id <= 3; id++ {
		a, b := net.Pipe()
		defer a.Close()
		defer b.Close()
		sess := NewSession(a, id, 1, 1, 0, 0, zap.NewNop())
		all = append(all, sess)
		st.Add(sess)
	}
	st.Add(all[0])
	if st.Count() != 3 {
		t.Fatalf("Count = %d", st.Count())
	}

	var seen []uint64
	st.ForEach(func(s *Session) {
		seen = append(seen, s.ID)
		if s.ID == 2 {
			st.Remove(2)
		}
	})
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Fatalf("visit order = %v", seen)
	}
	if st.Get(2) != nil || st.Count() != 2 {
		t.Fatal("session 2 not removed")
	}
	st.Remove(42)
	if st.Count() != 2 {
		t.Fatal("removing unknown id changed the store")
	}
}
