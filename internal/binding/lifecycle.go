package binding

import "sync"

// lifecycle carries the mount generation, subscriptions and observers of a
// binding. The owning binding's state is guarded by mu.
//
// Every mount and unmount bumps the generation; work started under an older
// generation is discarded when it completes.
type lifecycle[S any] struct {
	mu          sync.Mutex
	generation  uint64
	seq         uint64
	unsubscribe []func()

	emitMu  sync.Mutex
	emitted uint64

	obsMu     sync.Mutex
	nextObsID int
	observers []observer[S]

	wg sync.WaitGroup
}

type observer[S any] struct {
	id int
	fn func(S)
}

// begin tears down the previous mount and returns the new generation.
// mu is held on return.
func (l *lifecycle[S]) begin() uint64 {
	l.end()
	l.mu.Lock()
	l.generation++
	return l.generation
}

// end bumps the generation and disposes the subscriptions
func (l *lifecycle[S]) end() {
	l.mu.Lock()
	l.generation++
	unsubscribe := l.unsubscribe
	l.unsubscribe = nil
	l.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
}

// current locks mu and reports whether gen is still mounted.
// mu is held on return only when it reports true.
func (l *lifecycle[S]) current(gen uint64) bool {
	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		return false
	}
	return true
}

// keep stores unsubscribe, or calls it at once when gen is no longer mounted
func (l *lifecycle[S]) keep(gen uint64, unsubscribe func()) {
	l.mu.Lock()
	if gen == l.generation {
		l.unsubscribe = append(l.unsubscribe, unsubscribe)
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	unsubscribe()
}

// run starts fn in a goroutine tracked by wait
func (l *lifecycle[S]) run(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
}

func (l *lifecycle[S]) wait() {
	l.wg.Wait()
}

// publish releases mu and hands snapshot to the observers.
// A snapshot older than one already delivered is dropped, so observers
// never go back in time.
func (l *lifecycle[S]) publish(snapshot S) {
	l.seq++
	seq := l.seq
	l.mu.Unlock()

	l.emitMu.Lock()
	defer l.emitMu.Unlock()
	if seq <= l.emitted {
		return
	}
	l.emitted = seq

	l.obsMu.Lock()
	fns := make([]observer[S], len(l.observers))
	copy(fns, l.observers)
	l.obsMu.Unlock()

	for _, ob := range fns {
		ob.fn(snapshot)
	}
}

func (l *lifecycle[S]) observe(fn func(S)) func() {
	l.obsMu.Lock()
	l.nextObsID++
	id := l.nextObsID
	l.observers = append(l.observers, observer[S]{id: id, fn: fn})
	l.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.obsMu.Lock()
			defer l.obsMu.Unlock()
			for i, ob := range l.observers {
				if ob.id == id {
					l.observers = append(l.observers[:i:i], l.observers[i+1:]...)
					return
				}
			}
		})
	}
}
