package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// An in-memory implementation of Store for tests.
type MockStore struct {
	data map[string]string
	lock sync.Mutex
	// FailSet makes Set return an error, to exercise failure paths.
	FailSet bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: map[string]string{},
	}
}

func (self *MockStore) Get(key string) (string, error) {
	self.lock.Lock()
	defer self.lock.Unlock()
	if value, ok := self.data[key]; ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrKeyMissing, key)
}

func (self *MockStore) Set(key string, value string) error {
	if self.FailSet {
		return fmt.Errorf("mock store: set %s rejected", key)
	}
	self.lock.Lock()
	self.data[key] = value
	self.lock.Unlock()
	return nil
}

func (self *MockStore) SetWithTTL(key string, value string, ttl uint64) error {
	return self.Set(key, value)
}

func (self *MockStore) GetRecursive(prefix string) ([]Node, error) {
	self.lock.Lock()
	defer self.lock.Unlock()
	var ret []Node
	for key, value := range self.data {
		if strings.HasPrefix(key, prefix+"/") {
			ret = append(ret, Node{Key: key, Value: value})
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Key < ret[j].Key })
	return ret, nil
}
