package net

// SessionStore tracks live console sessions by ID. Tick goroutine only.
type SessionStore struct {
	sessions map[uint64]*Session
	order    []uint64
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session)}
}

func (s *SessionStore) Add(sess *Session) {
	if _, ok := s.sessions[sess.ID]; ok {
		return
	}
	s.sessions[sess.ID] = sess
	s.order = append(s.order, sess.ID)
}

func (s *SessionStore) Remove(id uint64) {
	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *SessionStore) Get(id uint64) *Session {
	return s.sessions[id]
}

func (s *SessionStore) Count() int {
	return len(s.sessions)
}

// ForEach visits sessions in connection order. fn may Remove the session
// it is given.
func (s *SessionStore) ForEach(fn func(*Session)) {
	ids := append([]uint64(nil), s.order...)
	for _, id := range ids {
		if sess, ok := s.sessions[id]; ok {
			fn(sess)
		}
	}
}
