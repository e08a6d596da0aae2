package config

import "strings"

type OIDC struct{}

var _ OIDCConfig = OIDC{}

func (OIDC) GetOIDCIssuerURL() string {
	return GetEnv("OIDC_ISSUER_URL", "")
}

func (OIDC) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (OIDC) GetOIDCRedirectURL() string {
	return GetEnv("OIDC_REDIRECT_URL", "http://localhost:4200/auth/callback")
}

func (OIDC) GetOIDCPostLogoutRedirectURL() string {
	return GetEnv("OIDC_POST_LOGOUT_REDIRECT_URL", "http://localhost:4200/auth/callback")
}

func (OIDC) GetOIDCScopes() []string {
	scopes := GetEnv("OIDC_SCOPES", "openid email profile")
	return strings.Fields(scopes)
}
