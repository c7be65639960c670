package geocode

import "context"

type MockGeocoder struct {
	Address string
	Err     error
	Calls   int
}

func (self *MockGeocoder) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	self.Calls++
	if self.Err != nil {
		return "", self.Err
	}
	return self.Address, nil
}

func (self *MockGeocoder) Verify(ctx context.Context) error {
	self.Calls++
	return self.Err
}
