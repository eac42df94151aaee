package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-kusto-go/kusto"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/sliops/kqlframe/core"
)

// Register client
func init() {
	_ = register(func(opts *Options) (core.Adapter, error) { return NewKusto(opts) }, "kusto", "adx")
}

// AuthMethod selects the credential used to talk to a cluster.
type AuthMethod string

const (
	AuthDevice          AuthMethod = "device"
	AuthAzCLI           AuthMethod = "azcli"
	AuthDefault         AuthMethod = "default"
	AuthManagedIdentity AuthMethod = "managed-identity"
)

var ErrUnsupportedAuthMethod = errors.New("unsupported auth method")

var _ core.Adapter = (*Kusto)(nil)

type Kusto struct {
	method   AuthMethod
	tenantID string
	clientID string
	prompt   func(string)

	clientOpts []kusto.Option
}

func NewKusto(opts *Options) (*Kusto, error) {
	if opts == nil {
		opts = &Options{}
	}

	method := opts.AuthMethod
	if method == "" {
		method = AuthDevice
	}

	switch method {
	case AuthDevice, AuthAzCLI, AuthDefault, AuthManagedIdentity:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAuthMethod, method)
	}

	prompt := opts.Prompt
	if prompt == nil {
		prompt = func(string) {}
	}

	return &Kusto{
		method:   method,
		tenantID: opts.TenantID,
		clientID: opts.ClientID,
		prompt:   prompt,
	}, nil
}

// Authenticate creates a credential for the cluster. Tokens are requested
// lazily by the credential on the first query and cached by it afterwards.
func (k *Kusto) Authenticate(cluster string) (*core.ConnectionContext, error) {
	cred, err := k.credential()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConnection, err)
	}

	return core.NewConnectionContext(cluster, cred), nil
}

func (k *Kusto) credential() (azcore.TokenCredential, error) {
	switch k.method {
	case AuthAzCLI:
		return azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
			TenantID: k.tenantID,
		})
	case AuthDefault:
		return azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
			TenantID: k.tenantID,
		})
	case AuthManagedIdentity:
		opts := &azidentity.ManagedIdentityCredentialOptions{}
		if k.clientID != "" {
			opts.ID = azidentity.ClientID(k.clientID)
		}
		return azidentity.NewManagedIdentityCredential(opts)
	default:
		return azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
			TenantID: k.tenantID,
			ClientID: k.clientID,
			UserPrompt: func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
				k.prompt(msg.Message)
				return nil
			},
		})
	}
}

// Connect creates a kusto client for a single query.
func (k *Kusto) Connect(connCtx *core.ConnectionContext) (core.Driver, error) {
	cred, ok := connCtx.Credential().(azcore.TokenCredential)
	if !ok {
		return nil, fmt.Errorf("%w: connection context for %s carries no token credential", core.ErrConnection, connCtx.Cluster())
	}

	d, err := newKustoDriver(connCtx.Cluster(), cred, k.clientOpts...)
	if err != nil {
		return nil, err
	}
	return d, nil
}
