// Package credstore loads device credentials from a JSON document and
// answers per-device lookups.
//
// The document maps a device name to its API account:
//
//	{
//	  "gw-east-1": {"username": "coa", "password": "s3cret"},
//	  "gw-west-1": {"username": "coa", "password": ""}
//	}
//
// An empty password is legal (factory-default accounts); a missing or empty
// username is not. The store is immutable after Load and safe for concurrent
// readers.
package credstore

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Credentials is one device's API account.
type Credentials struct {
	Username string
	Password string
}

// Store holds the credentials of every known device.
type Store struct {
	creds map[string]Credentials
}

// Load reads and validates a JSON credential document.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	return Parse(data)
}

// Parse validates a JSON credential document held in memory.
func Parse(data []byte) (*Store, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("credentials: not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("credentials: top-level value is not an object")
	}

	store := &Store{creds: make(map[string]Credentials)}

	var parseErr error
	root.ForEach(func(key, value gjson.Result) bool {
		device := key.String()

		if !value.IsObject() {
			parseErr = fmt.Errorf("credentials: device %q: entry is not an object", device)
			return false
		}

		username := value.Get("username").String()
		if username == "" {
			parseErr = fmt.Errorf("credentials: device %q: missing username", device)
			return false
		}

		store.creds[device] = Credentials{
			Username: username,
			Password: value.Get("password").String(),
		}

		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return store, nil
}

// Lookup returns the credentials for a device.
func (s *Store) Lookup(device string) (Credentials, bool) {
	c, ok := s.creds[device]
	return c, ok
}

// Validate fails fast when any of the required devices has no credentials.
// The daemon calls it at startup with the configured device list.
func (s *Store) Validate(devices []string) error {
	for _, d := range devices {
		if _, ok := s.creds[d]; !ok {
			return fmt.Errorf("credentials: no entry for required device %q", d)
		}
	}

	return nil
}

// Len returns the number of devices in the store.
func (s *Store) Len() int {
	return len(s.creds)
}
