package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// credentialsKey is the fixed name of the blob holding the credential
// collection.
const credentialsKey = "users"

var (
	// ErrEmptyCredentials rejects registration with a blank username or
	// password.
	ErrEmptyCredentials = errors.New("username/password cannot be empty")
	// ErrDuplicateUsername rejects registration of a username that is
	// already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// CredentialStore validates logins and registers new users against the
// JSON credential collection held in a BlobStore.
type CredentialStore struct {
	store BlobStore
}

// NewCredentialStore wraps the given blob store.
func NewCredentialStore(store BlobStore) *CredentialStore {
	return &CredentialStore{store: store}
}

// load reads the whole credential collection. A missing blob is an empty
// collection.
func (cs *CredentialStore) load() ([]Credential, error) {
	raw, err := cs.store.Get(credentialsKey)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var creds []Credential
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return creds, nil
}

// Register appends a new credential. The whole collection is rewritten in
// one store update, so a crash can never leave it partially written.
func (cs *CredentialStore) Register(username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return ErrEmptyCredentials
	}

	creds, err := cs.load()
	if err != nil {
		return err
	}
	for _, c := range creds {
		if c.Username == username {
			return ErrDuplicateUsername
		}
	}

	creds = append(creds, Credential{Username: username, Password: password})
	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := cs.store.Put(credentialsKey, raw); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Authenticate reports whether a stored credential matches both fields
// exactly. An unknown username is not an error, just false.
func (cs *CredentialStore) Authenticate(username, password string) (bool, error) {
	creds, err := cs.load()
	if err != nil {
		return false, err
	}
	for _, c := range creds {
		if c.Username == username && c.Password == password {
			return true, nil
		}
	}
	return false, nil
}
