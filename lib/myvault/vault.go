package myvault

import (
	"context"
	"os"

	"github.com/MarcGrol/klarnacheckout/lib/mystore"
)

// Credentials used to authenticate against a payment provider
type Credentials struct {
	ProviderName string `json:"provider_name"`
	MerchantID   string `json:"merchant_id"`
	SharedSecret string `json:"shared_secret" datastore:",noindex"`
}

//go:generate mockgen -source=vault.go -package myvault -destination vault_mock.go VaultReader
type VaultReader interface {
	Get(c context.Context, uid string) (Credentials, bool, error)
}

// New reads secrets from secret manager on gcloud. Locally a store backed vault is used, which
// starts empty so callers fall back to their own configuration.
func New(c context.Context) (VaultReader, func(), error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID != "" {
		return newSecretManagerVault(c, projectID)
	}

	return mystore.NewInMemoryStore[Credentials](c)
}
