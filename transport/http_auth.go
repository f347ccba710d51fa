package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(ctx context.Context, req *http.Request) error
}

// HTTPAuthManager implements the AuthManager interface
type HTTPAuthManager struct {
	authType   AuthType
	authConfig map[string]string

	mu          sync.Mutex
	credentials *clientcredentials.Config
	token       *oauth2.Token
}

// NewHTTPAuthManager creates a new HTTPAuthManager
func NewHTTPAuthManager(cfg *Config) *HTTPAuthManager {
	return &HTTPAuthManager{
		authType:   cfg.AuthType,
		authConfig: cfg.AuthConfig,
	}
}

// ApplyAuth adds authentication to the request
func (a *HTTPAuthManager) ApplyAuth(ctx context.Context, req *http.Request) error {
	switch a.authType {
	case AuthTypeNone, "":
		return nil
	case AuthTypeBasic:
		username := a.authConfig["username"]
		password := a.authConfig["password"]
		req.SetBasicAuth(username, password)
	case AuthTypeBearer:
		token := a.authConfig["token"]
		req.Header.Set("Authorization", "Bearer "+token)
	case AuthTypeAPIKey:
		key := a.authConfig["key"]
		header := a.authConfig["header"]
		if header == "" {
			header = "X-API-Key"
		}
		req.Header.Set(header, key)
	case AuthTypeOAuth2:
		return a.applyOAuth2(ctx, req)
	default:
		return fmt.Errorf("unsupported auth type: %s", a.authType)
	}
	return nil
}

// applyOAuth2 uses a static token when one is configured, otherwise the
// client credentials flow against token_url. When only issuer is set the
// token endpoint is discovered from the issuer's OpenID configuration.
// Discovery and token requests run on ctx, so cancelling the request
// cancels them too.
func (a *HTTPAuthManager) applyOAuth2(ctx context.Context, req *http.Request) error {
	if token := a.authConfig["token"]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}

	token, err := a.oauth2Token(ctx)
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)
	return nil
}

// oauth2Token returns the cached token while it is valid and fetches a new one
// otherwise. Failed discoveries and fetches are not cached.
func (a *HTTPAuthManager) oauth2Token(ctx context.Context) (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token.Valid() {
		return a.token, nil
	}

	if a.credentials == nil {
		tokenURL := a.authConfig["token_url"]
		if tokenURL == "" {
			issuer := a.authConfig["issuer"]
			if issuer == "" {
				return nil, fmt.Errorf("oauth2 auth requires token, token_url or issuer")
			}
			provider, err := oidc.NewProvider(ctx, issuer)
			if err != nil {
				return nil, authError(ctx, "failed to discover oauth2 token endpoint", err)
			}
			tokenURL = provider.Endpoint().TokenURL
		}

		cc := &clientcredentials.Config{
			ClientID:     a.authConfig["client_id"],
			ClientSecret: a.authConfig["client_secret"],
			TokenURL:     tokenURL,
		}
		if scopes := a.authConfig["scopes"]; scopes != "" {
			cc.Scopes = strings.Fields(strings.ReplaceAll(scopes, ",", " "))
		}
		a.credentials = cc
	}

	token, err := a.credentials.Token(ctx)
	if err != nil {
		return nil, authError(ctx, "failed to obtain oauth2 token", err)
	}
	a.token = token
	return token, nil
}

// authError classifies a failed auth round trip like any other transport failure
func authError(ctx context.Context, message string, err error) error {
	if ctx.Err() != nil {
		return NewCanceledError(message, context.Cause(ctx))
	}
	return NewNetworkError(message, err)
}
