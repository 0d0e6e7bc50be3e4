package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSecretsDir is the standard Docker Secrets mount point.
const DefaultSecretsDir = "/run/secrets"

// ReadSecret reads a secret from a file in the secrets directory.
func ReadSecret(secretsDir, secretName string) (string, error) {
	if secretsDir == "" {
		secretsDir = DefaultSecretsDir
	}
	filePath := filepath.Join(secretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		// No env fallback so that behaviour is the same in every environment.
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
