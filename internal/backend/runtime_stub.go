//go:build !govips || !cgo

package backend

import "fmt"

func Startup() error {
	return nil
}

func Shutdown() {}

func newGovips() (Backend, error) {
	return nil, fmt.Errorf("%w: %s requires the govips build tag and cgo", ErrUnknownBackend, NameGovips)
}
