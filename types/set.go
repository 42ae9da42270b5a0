package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// Set is a concurrency-safe set that preserves insertion order.
type Set[T comparable] struct {
	mu       sync.RWMutex
	elements map[T]int
	order    []T
}

func NewSet[T comparable](items ...T) *Set[T] {
	set := &Set[T]{
		elements: make(map[T]int),
	}
	set.Insert(items...)
	return set
}

func (s *Set[T]) Insert(items ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if _, found := s.elements[item]; !found {
			s.elements[item] = len(s.order)
			s.order = append(s.order, item)
		}
	}
}

func (s *Set[T]) Remove(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, found := s.elements[item]
	if !found {
		return
	}
	delete(s.elements, item)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	for i := idx; i < len(s.order); i++ {
		s.elements[s.order[i]] = i
	}
}

func (s *Set[T]) Exists(item T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := s.elements[item]
	return found
}

// Array returns the elements in insertion order.
func (s *Set[T]) Array() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := make([]T, len(s.order))
	copy(arr, s.order)
	return arr
}

func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Set[T]) String() string {
	items := s.Array()
	strs := make([]string, len(items))
	for i, item := range items {
		strs[i] = fmt.Sprint(item)
	}
	return strings.Join(strs, ", ")
}

func (s *Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Array())
}

func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	s.mu.Lock()
	s.elements = make(map[T]int)
	s.order = nil
	s.mu.Unlock()
	s.Insert(items...)
	return nil
}
