package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable means the widget could not be loaded for this session.
var ErrUnavailable = errors.New("payment: widget unavailable")

// Factory builds the widget. It is called at most once per Loader.
type Factory func(ctx context.Context) (Widget, error)

// Loader loads the widget lazily, once. A failed load is not retried.
type Loader struct {
	once    sync.Once
	factory Factory
	widget  Widget
	err     error
}

func NewLoader(factory Factory) *Loader {
	return &Loader{factory: factory}
}

// Static returns a Loader that always yields w.
func Static(w Widget) *Loader {
	return NewLoader(func(context.Context) (Widget, error) { return w, nil })
}

func (l *Loader) Load(ctx context.Context) (Widget, error) {
	l.once.Do(func() {
		if l.factory == nil {
			l.err = ErrUnavailable
			return
		}
		w, err := l.factory(ctx)
		switch {
		case err != nil:
			l.err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		case w == nil:
			l.err = ErrUnavailable
		default:
			l.widget = w
		}
	})
	return l.widget, l.err
}
