// Package nodeident derives this node's stable registry identity. The id
// survives restarts by being persisted next to the binary, so a restarted
// node reclaims its registry row instead of leaking a dead one.
package nodeident

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Load returns the node id stored at path, generating and persisting a new
// one on first boot. An empty path yields an ephemeral id for the current
// process only.
func Load(path string) (string, error) {
	if path == "" {
		return uuid.NewString(), nil
	}
	raw, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(raw))
		if _, parseErr := uuid.Parse(id); parseErr == nil {
			return id, nil
		}
		// Unparseable file contents are replaced, not trusted.
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read node id file: %w", err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persist node id: %w", err)
	}
	return id, nil
}
