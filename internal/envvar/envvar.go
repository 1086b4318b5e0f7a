// Package envvar resolves configuration values from environment variables, optionally backed by a
// secrets provider.
package envvar

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sanLimbu/taskboard-api/internal"
)

// Provider indicates a provider capable of returning secure values.
type Provider interface {
	Get(key string) (string, error)
}

// Configuration ...
type Configuration struct {
	provider Provider
}

// Load reads the env filename and loads it into ENV for this process.
func Load(filename string) error {
	if filename == "" {
		return nil
	}

	if err := godotenv.Load(filename); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "loading env var file")
	}

	return nil
}

// New ...
func New(provider Provider) *Configuration {
	return &Configuration{
		provider: provider,
	}
}

// Get returns the value of key. When KEY_SECURE is defined its value is used as the key to look up in
// the provider instead.
func (c *Configuration) Get(key string) (string, error) {
	res := os.Getenv(key)

	valSecret := os.Getenv(fmt.Sprintf("%s_SECURE", key))
	if valSecret != "" {
		if c.provider == nil {
			return "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "no provider for %s", key)
		}

		valSecretRes, err := c.provider.Get(valSecret)
		if err != nil {
			return "", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "provider.Get")
		}

		res = valSecretRes
	}

	return res, nil
}

// GetDefault is like Get but returns def when the value is empty.
func (c *Configuration) GetDefault(key, def string) (string, error) {
	res, err := c.Get(key)
	if err != nil {
		return "", err
	}

	if res == "" {
		return def, nil
	}

	return res, nil
}
