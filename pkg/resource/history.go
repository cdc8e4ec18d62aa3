package resource

// History is a browser-style visit list with a cursor.
type History struct {
	entries []string
	pos     int // index of the current entry, -1 when empty
}

func NewHistory() *History {
	return &History{pos: -1}
}

// Visit makes url the current entry and drops everything forward of the
// previous one. Visiting the current URL again is a no-op.
func (h *History) Visit(url string) {
	if h.pos >= 0 && h.entries[h.pos] == url {
		return
	}
	h.entries = append(h.entries[:h.pos+1], url)
	h.pos++
}

// Current returns the current URL, or "" when nothing has been visited.
func (h *History) Current() string {
	if h.pos < 0 {
		return ""
	}
	return h.entries[h.pos]
}

func (h *History) CanBack() bool    { return h.pos > 0 }
func (h *History) CanForward() bool { return h.pos >= 0 && h.pos < len(h.entries)-1 }

// PeekBack returns the previous URL without moving the cursor.
func (h *History) PeekBack() (string, bool) {
	return h.peek(-1)
}

// PeekForward returns the next URL without moving the cursor.
func (h *History) PeekForward() (string, bool) {
	return h.peek(1)
}

// Back moves the cursor one entry back and returns the new current URL.
func (h *History) Back() (string, bool) {
	return h.step(-1)
}

// Forward moves the cursor one entry forward and returns the new current URL.
func (h *History) Forward() (string, bool) {
	return h.step(1)
}

func (h *History) peek(delta int) (string, bool) {
	i := h.pos + delta
	if h.pos < 0 || i < 0 || i >= len(h.entries) {
		return "", false
	}
	return h.entries[i], true
}

func (h *History) step(delta int) (string, bool) {
	url, ok := h.peek(delta)
	if ok {
		h.pos += delta
	}
	return url, ok
}

func (h *History) Len() int {
	return len(h.entries)
}
