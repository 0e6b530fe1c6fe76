package viewer

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// ErrClosed is returned by Select once the viewer has been closed.
var ErrClosed = errors.New("viewer is closed")

// State of a Viewer.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateReady     State = "ready"
	StateError     State = "error"
)

// FileRef identifies the selected file without repeating its payload.
type FileRef struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       models.FileType `json:"type"`
	InlineView bool            `json:"inlineView"`
}

// Snapshot is a point-in-time view of a Viewer.
type Snapshot struct {
	State  State    `json:"state"`
	File   *FileRef `json:"file,omitempty"`
	Source *Source  `json:"source,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// Viewer holds at most one selected file. Selecting a new file or clearing
// the selection releases the previous transient resource before anything
// else happens, so a viewer never owns two resources at once.
type Viewer struct {
	store *ResourceStore
	log   *slog.Logger

	mu     sync.Mutex
	state  State
	file   *models.ProductFile
	source Source
	reason string
	closed bool
}

// New creates an idle viewer backed by store.
func New(store *ResourceStore, log *slog.Logger) *Viewer {
	return &Viewer{
		store: store,
		log:   log,
		state: StateIdle,
	}
}

// Select makes file the active file. On failure the viewer is left in
// StateError and the error is returned; there is no automatic retry.
func (v *Viewer) Select(file models.ProductFile) (Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return v.snapshotLocked(), ErrClosed
	}

	v.releaseLocked()
	v.file = &file
	v.transitionLocked(StateResolving)

	src, err := Resolve(file, v.store)
	if err != nil {
		v.reason = err.Error()
		v.transitionLocked(StateError)
		return v.snapshotLocked(), err
	}

	v.source = src
	v.transitionLocked(StateReady)
	return v.snapshotLocked(), nil
}

// Clear drops the selection and releases any held resource.
func (v *Viewer) Clear() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.releaseLocked()
	v.transitionLocked(StateIdle)
	return v.snapshotLocked()
}

// Close clears the viewer and refuses further selections. Safe to call more
// than once.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.releaseLocked()
	v.transitionLocked(StateIdle)
	v.closed = true
}

// Snapshot returns the current state.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *Viewer) releaseLocked() {
	if Release(v.store, v.source) {
		v.log.Debug("released transient resource", "resource_id", v.source.Resource.ID)
	}
	v.source = Source{}
	v.file = nil
	v.reason = ""
}

func (v *Viewer) transitionLocked(to State) {
	if v.state != to {
		v.log.Debug("viewer transition", "from", v.state, "to", to)
	}
	v.state = to
}

func (v *Viewer) snapshotLocked() Snapshot {
	snap := Snapshot{State: v.state, Reason: v.reason}
	if v.file != nil {
		snap.File = &FileRef{
			ID:         v.file.ID,
			Name:       v.file.Name,
			Type:       v.file.Type,
			InlineView: v.file.Type.Valid() && v.file.Type.SupportsInlineView(),
		}
	}
	if v.state == StateReady {
		src := v.source
		snap.Source = &src
	}
	return snap
}
