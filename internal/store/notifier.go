package store

import "sync"

// Listener is called after every mutation with what changed and a fresh view
type Listener func(Change, View)

// notifier fans changes out to listeners. Listeners run synchronously on the
// goroutine that mutated the store.
type notifier struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
	order     []int
}

func newNotifier() *notifier {
	return &notifier{listeners: make(map[int]Listener)}
}

// Subscribe registers l and returns a func that removes it
func (n *notifier) Subscribe(l Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.listeners[id] = l
	n.order = append(n.order, id)

	return func() { n.unsubscribe(id) }
}

func (n *notifier) unsubscribe(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.listeners[id]; !ok {
		return
	}
	delete(n.listeners, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Publish calls every listener in subscription order
func (n *notifier) Publish(c Change, v View) {
	n.mu.RLock()
	ls := make([]Listener, 0, len(n.order))
	for _, id := range n.order {
		ls = append(ls, n.listeners[id])
	}
	n.mu.RUnlock()

	for _, l := range ls {
		l(c, v)
	}
}
