package services

import "errors"

// ErrKeyMissing is returned (wrapped) by Get when the key is not set.
var ErrKeyMissing = errors.New("key missing")

type Store interface {
	Set(key string, value string) error
	SetWithTTL(key string, value string, ttl uint64) error
	Get(key string) (string, error)
	GetRecursive(prefix string) ([]Node, error)
}

type Node struct {
	Key   string
	Value string
}
