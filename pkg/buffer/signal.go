package buffer

// signal is a broadcast wait condition bound to the buffer's mutex.
//
// Unlike [sync.Cond] a waiter receives a channel, so it can select on it
// together with a context. All methods must be called with the mutex held.
type signal struct {
	ch chan struct{}
}

// wait returns a channel that is closed by the next broadcast.
func (s *signal) wait() <-chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}

	return s.ch
}

// broadcast wakes every goroutine waiting on s.
func (s *signal) broadcast() {
	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
}
