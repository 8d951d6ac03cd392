package domain

// HistoryWindow is a fixed-capacity ring of recent chat messages. When
// full, appending evicts the oldest entry. It replaces the read-trim-write
// pattern over a shared slice; the owning session guards it with its own
// lock.
type HistoryWindow struct {
	buf   []ChatMessage
	start int
	count int
}

// NewHistoryWindow creates a window holding at most capacity messages.
func NewHistoryWindow(capacity int) *HistoryWindow {
	if capacity <= 0 {
		capacity = 1
	}
	return &HistoryWindow{buf: make([]ChatMessage, capacity)}
}

// Append adds a message, evicting the oldest when full.
func (w *HistoryWindow) Append(msg ChatMessage) {
	if w.count < len(w.buf) {
		w.buf[(w.start+w.count)%len(w.buf)] = msg
		w.count++
		return
	}
	w.buf[w.start] = msg
	w.start = (w.start + 1) % len(w.buf)
}

// Len returns the number of retained messages.
func (w *HistoryWindow) Len() int {
	return w.count
}

// Messages returns the retained messages oldest-first as a fresh slice.
func (w *HistoryWindow) Messages() []ChatMessage {
	out := make([]ChatMessage, 0, w.count)
	for i := 0; i < w.count; i++ {
		out = append(out, w.buf[(w.start+i)%len(w.buf)])
	}
	return out
}
