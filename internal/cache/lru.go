package cache

// lruNode is a node in a doubly-linked LRU list.
type lruNode[T any] struct {
	value T
	prev  *lruNode[T]
	next  *lruNode[T]
}

// lruList is a doubly-linked list ordered by recency.
// The list is not thread-safe; callers must handle synchronization.
//
// The head is the most recently used, tail is least recently used.
type lruList[T any] struct {
	head *lruNode[T]
	tail *lruNode[T]
	len  int
}

// Len returns the number of nodes in the list.
func (l *lruList[T]) Len() int {
	return l.len
}

// PushFront adds a new node at the front (most recently used).
// Returns the created node for later access.
func (l *lruList[T]) PushFront(value T) *lruNode[T] {
	node := &lruNode[T]{value: value}
	l.linkFront(node)
	return node
}

// MoveToFront moves an existing node to the front (most recently used).
func (l *lruList[T]) MoveToFront(node *lruNode[T]) {
	if node == nil || node == l.head {
		return
	}
	l.unlink(node)
	l.linkFront(node)
}

// Remove removes a node from the list.
func (l *lruList[T]) Remove(node *lruNode[T]) {
	if node == nil {
		return
	}
	l.unlink(node)
}

// RemoveOldest removes and returns the least recently used value.
// Returns zero value and false if list is empty.
func (l *lruList[T]) RemoveOldest() (T, bool) {
	if l.tail == nil {
		var zero T
		return zero, false
	}

	node := l.tail
	l.unlink(node)
	return node.value, true
}

// Oldest returns the least recently used node, or nil.
func (l *lruList[T]) Oldest() *lruNode[T] {
	return l.tail
}

func (l *lruList[T]) linkFront(node *lruNode[T]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

// unlink removes a node from the list and clears its pointers.
func (l *lruList[T]) unlink(node *lruNode[T]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	node.prev = nil
	node.next = nil
	l.len--
}
