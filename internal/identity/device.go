package identity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DeviceIDKey is the store key holding the installation's device identifier.
const DeviceIDKey = "device_id"

var deviceMu sync.Mutex

// DeviceID returns the persisted device identifier, generating and saving a
// random UUID on first access. The value never changes for a given store.
func DeviceID(s Store) (string, error) {
	deviceMu.Lock()
	defer deviceMu.Unlock()

	id, ok, err := s.Get(DeviceIDKey)
	if err != nil {
		return "", fmt.Errorf("identity.DeviceID: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := s.Set(DeviceIDKey, id); err != nil {
		return "", fmt.Errorf("identity.DeviceID: %w", err)
	}
	return id, nil
}

// LookupDeviceID returns the stored identifier without generating one.
func LookupDeviceID(s Store) (string, bool, error) {
	id, ok, err := s.Get(DeviceIDKey)
	if err != nil {
		return "", false, fmt.Errorf("identity.LookupDeviceID: %w", err)
	}
	return id, ok && id != "", nil
}
