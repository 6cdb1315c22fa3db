package session

import "sync"

type fakeBroadcaster struct {
	mu  sync.Mutex
	fns []func(Event)
}

func (f *fakeBroadcaster) Publish(e Event) error {
	f.deliver(e)
	return nil
}

func (f *fakeBroadcaster) Subscribe(fn func(Event)) (func(), error) {
	f.mu.Lock()
	f.fns = append(f.fns, fn)
	f.mu.Unlock()
	return func() {}, nil
}

func (f *fakeBroadcaster) subscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fns) > 0
}

func (f *fakeBroadcaster) deliver(e Event) {
	f.mu.Lock()
	fns := append([]func(Event){}, f.fns...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}
