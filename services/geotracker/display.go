package geotracker

import "github.com/barnybug/geotracker/services"

// Display receives the rendered map document.
type Display interface {
	Show(html string) error
}

// StoreDisplay keeps the document in the state store, where the api service
// serves it from.
type StoreDisplay struct {
	Store services.Store
	Key   string
}

func (self *StoreDisplay) Show(html string) error {
	return self.Store.Set(self.Key, html)
}
