package record

import (
	"time"

	"github.com/ValerySidorin/styx/pkg/outcome"
)

// Entry is one journal row, the persisted form of an outcome.
type Entry struct {
	Class     string
	ID        string
	URL       string
	Path      string
	Kind      string
	Status    int
	Error     string
	CreatedAt time.Time
}

func New(class string, o outcome.Outcome, at time.Time) Entry {
	e := Entry{
		Class:     class,
		ID:        o.ID(),
		URL:       o.URL(),
		Path:      o.Path(),
		Kind:      o.Kind().String(),
		Status:    o.Status(),
		CreatedAt: at.UTC(),
	}
	if o.Kind() == outcome.FailedTransport {
		e.Error = o.Cause().Error()
	}

	return e
}
