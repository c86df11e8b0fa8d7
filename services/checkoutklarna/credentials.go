package checkoutklarna

import (
	"context"
	"fmt"

	"github.com/MarcGrol/klarnacheckout/lib/myerrors"
	"github.com/MarcGrol/klarnacheckout/lib/myvault"
)

const CredentialsVaultKey = "klarnaCredentials"

//go:generate mockgen -source=credentials.go -package checkoutklarna -destination credentials_mock.go CredentialsProvider
type CredentialsProvider interface {
	GetCredentials(c context.Context) (myvault.Credentials, error)
}

type vaultCredentialsProvider struct {
	vault    myvault.VaultReader
	fallback myvault.Credentials
}

// NewCredentialsProvider prefers credentials from the vault and falls back to the configured ones
func NewCredentialsProvider(vault myvault.VaultReader, cfg Config) *vaultCredentialsProvider {
	return &vaultCredentialsProvider{
		vault: vault,
		fallback: myvault.Credentials{
			ProviderName: ProviderName,
			MerchantID:   cfg.MerchantID,
			SharedSecret: cfg.SharedSecret,
		},
	}
}

func (p *vaultCredentialsProvider) GetCredentials(c context.Context) (myvault.Credentials, error) {
	if p.vault != nil {
		credentials, exists, err := p.vault.Get(c, CredentialsVaultKey)
		if err != nil {
			return myvault.Credentials{}, myerrors.NewInternalError(fmt.Errorf("error reading credentials from vault: %s", err))
		}
		if exists && credentials.ProviderName == ProviderName && credentials.MerchantID != "" {
			return credentials, nil
		}
	}

	if p.fallback.MerchantID == "" {
		return myvault.Credentials{}, myerrors.NewAuthenticationError(fmt.Errorf("no %s credentials configured", ProviderName))
	}

	return p.fallback, nil
}
