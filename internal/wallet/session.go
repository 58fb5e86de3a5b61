package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// The session cache holds decrypted hex keys between invocations so that a
// batch of commands triggers at most one OS keychain prompt. It lives in the
// user cache directory (~/.cache/tempo on Linux, ~/Library/Caches/tempo on
// macOS) and is only readable by the owner.
func sessionFilePath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "tempo", "session.json")
}

func readSession() map[string]string {
	keys := map[string]string{}
	data, err := os.ReadFile(sessionFilePath())
	if err == nil {
		_ = json.Unmarshal(data, &keys)
	}
	return keys
}

func writeSession(keys map[string]string) error {
	path := sessionFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// GetSessionKey looks up a cached key by keystore ref.
func GetSessionKey(ref string) (string, bool) {
	v, ok := readSession()[ref]
	return v, ok
}

// PutSessionKey caches one key. Write failures are ignored since the cache
// is an optimization, not a store of record.
func PutSessionKey(ref, hexKey string) {
	keys := readSession()
	keys[ref] = hexKey
	_ = writeSession(keys)
}

// BulkPutSessionKeys merges several keys into the cache with one write.
func BulkPutSessionKeys(add map[string]string) {
	if len(add) == 0 {
		return
	}
	keys := readSession()
	for ref, hexKey := range add {
		keys[ref] = hexKey
	}
	_ = writeSession(keys)
}

// LoadSessionSnapshot returns the current cache contents.
func LoadSessionSnapshot() map[string]string {
	return readSession()
}

// RemoveSessionKey evicts one key, keeping the cache in step with keychain
// deletions.
func RemoveSessionKey(ref string) {
	keys := readSession()
	if _, ok := keys[ref]; !ok {
		return
	}
	delete(keys, ref)
	_ = writeSession(keys)
}

// ClearSession deletes the cache file entirely.
func ClearSession() error {
	err := os.Remove(sessionFilePath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// SessionActive reports whether any keys are cached.
func SessionActive() bool {
	return len(readSession()) > 0
}
