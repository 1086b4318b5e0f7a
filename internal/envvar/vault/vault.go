// Package vault implements an envvar.Provider backed by the HashiCorp Vault KV v2 engine.
package vault

import (
	"path"
	"strings"
	"sync"

	"github.com/hashicorp/vault/api"

	"github.com/sanLimbu/taskboard-api/internal"
)

// Provider ...
type Provider struct {
	path    string
	client  *api.Logical
	mu      sync.Mutex
	secrets map[string]map[string]interface{}
}

// New instantiates the Vault client.
func New(token, addr, path string) (*Provider, error) {
	config := &api.Config{
		Address: addr,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "api.NewClient")
	}

	client.SetToken(token)

	return &Provider{
		path:    path,
		client:  client.Logical(),
		secrets: make(map[string]map[string]interface{}),
	}, nil
}

// Get retrieves the value indicated by v, which uses the "secret:field" format, for example
// "database:password". Secrets are read once and cached.
func (p *Provider) Get(v string) (string, error) {
	secret, field, ok := strings.Cut(v, ":")
	if !ok || secret == "" || field == "" {
		return "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "invalid secret reference %q", v)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data, ok := p.secrets[secret]
	if !ok {
		res, err := p.client.Read(path.Join(p.path, secret))
		if err != nil {
			return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Read")
		}

		if res == nil {
			return "", internal.NewErrorf(internal.ErrorCodeNotFound, "secret %q not found", secret)
		}

		data, ok = res.Data["data"].(map[string]interface{})
		if !ok {
			return "", internal.NewErrorf(internal.ErrorCodeUnknown, "secret %q has no data", secret)
		}

		p.secrets[secret] = data
	}

	val, ok := data[field].(string)
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "field %q not found in %q", field, secret)
	}

	return val, nil
}
