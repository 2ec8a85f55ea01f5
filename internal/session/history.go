package session

import "sync"

// History is a stack of visited locations with a cursor, the way a browser
// tab keeps one.
type History interface {
	Path() string
	Push(path string)
	Replace(path string)
	Back() bool
	Forward() bool
}

// MemoryHistory is an in-process History. Push drops every entry ahead of
// the cursor.
type MemoryHistory struct {
	mu       sync.Mutex
	entries  []string
	index    int
	onChange func(path string)
}

func NewMemoryHistory(initial string) *MemoryHistory {
	if initial == "" {
		initial = "/"
	}
	return &MemoryHistory{entries: []string{initial}}
}

// OnChange registers fn to be called with the current path after every
// change of location.
func (h *MemoryHistory) OnChange(fn func(path string)) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

func (h *MemoryHistory) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

func (h *MemoryHistory) Push(path string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], path)
	h.index++
	h.mu.Unlock()
	h.changed()
}

func (h *MemoryHistory) Replace(path string) {
	h.mu.Lock()
	h.entries[h.index] = path
	h.mu.Unlock()
	h.changed()
}

func (h *MemoryHistory) Back() bool {
	h.mu.Lock()
	if h.index == 0 {
		h.mu.Unlock()
		return false
	}
	h.index--
	h.mu.Unlock()
	h.changed()
	return true
}

func (h *MemoryHistory) Forward() bool {
	h.mu.Lock()
	if h.index == len(h.entries)-1 {
		h.mu.Unlock()
		return false
	}
	h.index++
	h.mu.Unlock()
	h.changed()
	return true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *MemoryHistory) changed() {
	h.mu.Lock()
	fn := h.onChange
	path := h.entries[h.index]
	h.mu.Unlock()
	if fn != nil {
		fn(path)
	}
}
