package params

import (
	"errors"
	"sync"
)

// Edit is a pending write posted from outside the frame loop.
type Edit struct {
	Name  string
	Value float64
	Text  string // parsed with SetString when non-empty
}

// Inbox queues edits from other goroutines until the frame loop drains them
// at the start of a frame, so a frame never observes a half-applied batch.
type Inbox struct {
	mu      sync.Mutex
	pending []Edit
}

func NewInbox() *Inbox {
	return &Inbox{}
}

// Post queues a numeric write.
func (in *Inbox) Post(name string, value float64) {
	in.mu.Lock()
	in.pending = append(in.pending, Edit{Name: name, Value: value})
	in.mu.Unlock()
}

// PostText queues a textual write.
func (in *Inbox) PostText(name, text string) {
	in.mu.Lock()
	in.pending = append(in.pending, Edit{Name: name, Text: text})
	in.mu.Unlock()
}

// Len reports the number of queued edits.
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.pending)
}

// Drain applies every queued edit to r in posting order. Edits naming
// unknown parameters are skipped and reported in the returned error.
func (in *Inbox) Drain(r *Registry) error {
	in.mu.Lock()
	batch := in.pending
	in.pending = nil
	in.mu.Unlock()

	var errs []error
	for _, e := range batch {
		var err error
		if e.Text != "" {
			_, err = r.SetString(e.Name, e.Text)
		} else {
			_, err = r.Set(e.Name, e.Value)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
