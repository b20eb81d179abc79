// Package store keeps the graph drawn for a pipeline in memory.
package store

import (
	"fmt"
	"sync"

	"github.com/dominikbraun/graph"
)

// CustomStore is a graph.Store whose vertex properties can be updated in place.
type CustomStore[K comparable, T any] interface {
	graph.Store[K, T]
	UpdateVertex(k K, options ...func(*graph.VertexProperties)) error
	CreatesCycle(source, target K) (bool, error)
}

type vertex[K comparable, T any] struct {
	value      T
	properties *graph.VertexProperties
	// out and in are keyed by the hash at the other end of the edge.
	out map[K]graph.Edge[K]
	in  map[K]graph.Edge[K]
}

// MemoryStore is a concurrency safe CustomStore.
type MemoryStore[K comparable, T any] struct {
	lock     sync.RWMutex
	vertices map[K]*vertex[K, T]
	order    []K
}

func NewMemoryStore[K comparable, T any]() CustomStore[K, T] {
	return &MemoryStore[K, T]{
		vertices: make(map[K]*vertex[K, T]),
	}
}

func (s *MemoryStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	s.vertices[k] = &vertex[K, T]{
		value:      t,
		properties: &p,
		out:        make(map[K]graph.Edge[K]),
		in:         make(map[K]graph.Edge[K]),
	}
	s.order = append(s.order, k)

	return nil
}

// ListVertices returns the vertices in insertion order.
func (s *MemoryStore[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	hashes := make([]K, len(s.order))
	copy(hashes, s.order)

	return hashes, nil
}

func (s *MemoryStore[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.vertices), nil
}

func (s *MemoryStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		var zero T

		return zero, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v.value, *v.properties, nil
}

func (s *MemoryStore[K, T]) UpdateVertex(k K, options ...func(*graph.VertexProperties)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.vertices[k]
	if !ok {
		return graph.ErrVertexNotFound
	}

	for _, opt := range options {
		opt(v.properties)
	}

	return nil
}

func (s *MemoryStore[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.vertices[k]
	if !ok {
		return graph.ErrVertexNotFound
	}

	if len(v.in) > 0 || len(v.out) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.vertices, k)

	for i, hash := range s.order {
		if hash == k {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	return nil
}

func (s *MemoryStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	source, target, err := s.endpoints(sourceHash, targetHash)
	if err != nil {
		return err
	}

	source.out[targetHash] = edge
	target.in[sourceHash] = edge

	return nil
}

func (s *MemoryStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	source, target, err := s.endpoints(sourceHash, targetHash)
	if err != nil {
		return err
	}

	if _, ok := source.out[targetHash]; !ok {
		return graph.ErrEdgeNotFound
	}

	source.out[targetHash] = edge
	target.in[sourceHash] = edge

	return nil
}

func (s *MemoryStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if source, ok := s.vertices[sourceHash]; ok {
		delete(source.out, targetHash)
	}

	if target, ok := s.vertices[targetHash]; ok {
		delete(target.in, sourceHash)
	}

	return nil
}

func (s *MemoryStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	source, ok := s.vertices[sourceHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	edge, ok := source.out[targetHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

// ListEdges returns the edges grouped by source, sources in insertion order.
func (s *MemoryStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[K], 0)

	for _, hash := range s.order {
		for _, edge := range s.vertices[hash].out {
			res = append(res, edge)
		}
	}

	return res, nil
}

// CreatesCycle walks the incoming edges of source looking for target.
func (s *MemoryStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.vertices[source]; !ok {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", source, graph.ErrVertexNotFound)
	}

	if _, ok := s.vertices[target]; !ok {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", target, graph.ErrVertexNotFound)
	}

	if source == target {
		return true, nil
	}

	stack := []K{source}
	visited := make(map[K]struct{})

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[current]; ok {
			continue
		}

		if current == target {
			return true, nil
		}

		visited[current] = struct{}{}

		for parent := range s.vertices[current].in {
			stack = append(stack, parent)
		}
	}

	return false, nil
}

func (s *MemoryStore[K, T]) endpoints(sourceHash, targetHash K) (*vertex[K, T], *vertex[K, T], error) {
	source, ok := s.vertices[sourceHash]
	if !ok {
		return nil, nil, fmt.Errorf("source %v: %w", sourceHash, graph.ErrVertexNotFound)
	}

	target, ok := s.vertices[targetHash]
	if !ok {
		return nil, nil, fmt.Errorf("target %v: %w", targetHash, graph.ErrVertexNotFound)
	}

	return source, target, nil
}
