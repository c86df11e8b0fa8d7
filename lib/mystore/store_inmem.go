package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// inmemTransactionKey is scoped to a single store: a transaction on one store does not lock another
type inmemTransactionKey struct {
	store any
}

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if s.inTransaction(c) {
		// already within a transaction: nested call joins it
		return f(c)
	}

	s.Lock()
	defer s.Unlock()

	return f(context.WithValue(c, inmemTransactionKey{store: s}, true))
}

func (s *InMemoryStore[T]) inTransaction(c context.Context) bool {
	return c.Value(inmemTransactionKey{store: s}) != nil
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	if !s.inTransaction(c) {
		s.Lock()
		defer s.Unlock()
	}

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	if !s.inTransaction(c) {
		s.Lock()
		defer s.Unlock()
	}

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	if !s.inTransaction(c) {
		s.Lock()
		defer s.Unlock()
	}

	uids := make([]string, 0, len(s.Items))
	for uid := range s.Items {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	result := make([]T, 0, len(s.Items))
	for _, uid := range uids {
		result = append(result, s.Items[uid])
	}

	return result, nil
}

// Query only supports equality filters on exported struct fields; ordering is by uid
func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := []T{}
	for _, item := range all {
		match, err := matches(item, filters)
		if err != nil {
			return nil, err
		}
		if match {
			result = append(result, item)
		}
	}

	return result, nil
}

func matches(item any, filters []Filter) (bool, error) {
	v := reflect.Indirect(reflect.ValueOf(item))
	for _, f := range filters {
		if f.Compare != "=" {
			return false, fmt.Errorf("unsupported comparison '%s' on field %s", f.Compare, f.Field)
		}
		if v.Kind() != reflect.Struct {
			return false, fmt.Errorf("cannot filter on field %s of %T", f.Field, item)
		}
		field := v.FieldByName(f.Field)
		if !field.IsValid() {
			return false, fmt.Errorf("unknown field %s of %T", f.Field, item)
		}
		if !reflect.DeepEqual(field.Interface(), f.Value) {
			return false, nil
		}
	}
	return true, nil
}
