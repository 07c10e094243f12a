package interaction

import (
	"sync/atomic"

	"bite/internal/term"
)

// Line pairs a materialized display line with the Interaction/Stream/row it
// came from, the shape spec.md §4.3's iter_lines contract names.
type Line struct {
	InteractionID int64
	Stream        Stream
	Row           int
	Line          term.Line
}

// LineRange bounds an IterLines query; a zero value means "all".
type LineRange struct {
	FromID int64
	ToID   int64 // 0 means unbounded
}

// Store is the interaction store of spec.md §4.3: it keeps interactions in
// submission order, stable by ID for their lifetime, and holds the "current"
// pointer (the Unstarted interaction command text is being composed into).
type Store struct {
	nextID  atomic.Int64
	items   []*Interaction
	byID    map[int64]*Interaction
	rows    int
	cols    int
	current *Interaction
}

// NewStore builds an empty Store sized rows x cols and seeds the first
// current (Unstarted) Interaction, per spec.md §4.3's invariant.
func NewStore(rows, cols int) *Store {
	st := &Store{byID: make(map[int64]*Interaction), rows: rows, cols: cols}
	st.current = st.create("")
	return st
}

// Create appends a new Interaction in state Unstarted. Used internally by
// Submit; exposed for tests and for a Store used outside a Session.
func (st *Store) Create(command string) *Interaction {
	return st.create(command)
}

func (st *Store) create(command string) *Interaction {
	id := st.nextID.Add(1)
	ia := newInteraction(id, command, st.rows, st.cols)
	st.items = append(st.items, ia)
	st.byID[id] = ia
	return ia
}

// Current returns the Interaction currently accepting composed command text.
func (st *Store) Current() *Interaction { return st.current }

// Submit finalizes the current Interaction's command text, transitions it
// toward Running (the caller sets Running once a Job actually starts), and
// creates the next current Interaction, per spec.md §4.3's invariant.
func (st *Store) Submit(commandText string) *Interaction {
	ia := st.current
	ia.Command = commandText
	st.current = st.create("")
	return ia
}

// Get returns the Interaction with the given ID, or nil if unknown.
func (st *Store) Get(id int64) *Interaction { return st.byID[id] }

// Append feeds bytes into the parser attached to id's stream screen.
// No-op if id is unknown, per spec.md §4.3.
func (st *Store) Append(id int64, stream Stream, data []byte) {
	ia := st.byID[id]
	if ia == nil {
		return
	}
	ia.append(stream, data)
}

// SetRunning transitions an Interaction's running state. Monotone: an
// Exited interaction is frozen and further calls are ignored.
func (st *Store) SetRunning(id int64, phase Phase, code int) {
	ia := st.byID[id]
	if ia == nil || ia.Running.Phase == Exited {
		return
	}
	ia.Running = RunningState{Phase: phase, Code: code}
}

// SetVisibility sets id's per-stream display policy.
func (st *Store) SetVisibility(id int64, stream Stream, v Visibility) {
	ia := st.byID[id]
	if ia == nil {
		return
	}
	switch stream {
	case StreamError:
		ia.errorVis = v
	default:
		ia.outputVis = v
	}
}

// All returns the interactions in submission order (never reordered).
func (st *Store) All() []*Interaction { return st.items }

// IterLines produces the user-visible display sequence across the range's
// interactions, honoring visibility, per spec.md §4.3. The result is
// materialized eagerly under the Store's caller-held lock (see
// internal/session for the lock discipline); callers needing a true lazy
// sequence should page through interaction IDs themselves.
func (st *Store) IterLines(r LineRange) []Line {
	var out []Line
	for _, ia := range st.items {
		if ia.ID < r.FromID {
			continue
		}
		if r.ToID != 0 && ia.ID > r.ToID {
			break
		}
		if ia.Visibility(StreamOutput) != Hidden {
			for row, l := range ia.Output.IterateVisibleLines() {
				out = append(out, Line{InteractionID: ia.ID, Stream: StreamOutput, Row: row, Line: l})
			}
		}
		if ia.Visibility(StreamError) != Hidden {
			for row, l := range ia.Error.IterateVisibleLines() {
				out = append(out, Line{InteractionID: ia.ID, Stream: StreamError, Row: row, Line: l})
			}
		}
	}
	return out
}

// Resize propagates a terminal size change to every Interaction's screens.
func (st *Store) Resize(rows, cols int) {
	st.rows, st.cols = rows, cols
	for _, ia := range st.items {
		ia.Output.Resize(rows, cols)
		ia.Error.Resize(rows, cols)
		ia.Prompt.Resize(1, cols)
	}
}
