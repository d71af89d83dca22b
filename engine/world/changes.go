package world

type eventKind uint8

const (
	eventInserted eventKind = iota
	eventModified
	eventRemoved
)

type event struct {
	kind   eventKind
	entity Entity
	mask   Component
}

// record appends an event. Without readers nothing can consume it, so it is dropped.
func (w *World) record(kind eventKind, e Entity, mask Component) {
	if len(w.readers) == 0 {
		w.base++
		return
	}
	w.events = append(w.events, event{kind: kind, entity: e, mask: mask})
}

// end returns the sequence number one past the last event.
func (w *World) end() uint64 {
	return w.base + uint64(len(w.events))
}

// trim drops the events every reader has consumed.
func (w *World) trim() {
	low := w.end()
	for r := range w.readers {
		low = min(low, r.cursor)
	}
	n := int(low - w.base)
	if n == 0 {
		return
	}
	w.events = append(w.events[:0], w.events[n:]...)
	w.base = low
}

// Reader is a cursor into the change log of a World. Each consumer owns one Reader and
// sees every change made after the Reader was created exactly once.
type Reader struct {
	w      *World
	cursor uint64
	closed bool
}

// NewReader creates a Reader positioned after the last recorded change.
func (w *World) NewReader() *Reader {
	w.mu.Lock()
	defer w.mu.Unlock()
	r := &Reader{w: w, cursor: w.end()}
	w.readers[r] = struct{}{}
	return r
}

// Pending reports whether changes were recorded since the last ReadChanges.
func (r *Reader) Pending() bool {
	r.w.mu.RLock()
	defer r.w.mu.RUnlock()
	return r.cursor < r.w.end()
}

// ReadChanges clears the three sets and refills them with the changes recorded since the
// previous call.
//
// An entity inserted and then modified is only reported as inserted. An entity removed
// after being inserted or modified in the same window is only reported as removed, and
// an entity inserted and removed in the same window is reported as removed so consumers
// can drop anything they derived from it.
//
// Parameters:
//   - inserted: receives entities created since the last read, with ComponentAll
//   - modified: receives entities changed since the last read, with the changed components
//   - removed: receives entities removed since the last read
func (r *Reader) ReadChanges(inserted, modified, removed *EntitySet) {
	if r.closed {
		panic("world: read from closed change reader")
	}
	inserted.Clear()
	modified.Clear()
	removed.Clear()

	w := r.w
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ev := range w.events[r.cursor-w.base:] {
		switch ev.kind {
		case eventInserted:
			inserted.Add(ev.entity, ev.mask)
		case eventModified:
			if !inserted.Contains(ev.entity) {
				modified.Add(ev.entity, ev.mask)
			}
		case eventRemoved:
			inserted.Delete(ev.entity)
			modified.Delete(ev.entity)
			removed.Add(ev.entity, ev.mask)
		}
	}
	r.cursor = w.end()
	w.trim()
}

// Close unregisters the reader. Changes are no longer retained for it.
func (r *Reader) Close() {
	if r.closed {
		return
	}
	r.closed = true
	w := r.w
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.readers, r)
	if len(w.readers) == 0 {
		w.base = w.end()
		w.events = w.events[:0]
		return
	}
	w.trim()
}
