package services

import (
	"net/url"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

// TokenUser is the username paired with an embedded access token.
func TokenUser(host domain.HostType) string {
	if host == domain.HostGitHub {
		return "x-access-token"
	}
	return "gitlab-token"
}

// CloneURL selects the clone URL for a repository. HTTP URLs carry the
// token as credentials unless hideToken is set or no token is known.
func CloneURL(ref driven.RepoRef, cfg domain.Config) string {
	if cfg.Method == domain.CloneSSH {
		if ref.SSHURL != "" {
			return ref.SSHURL
		}
		return ref.HTTPURL
	}
	if cfg.HideToken || cfg.Token == "" || ref.HTTPURL == "" {
		return ref.HTTPURL
	}
	u, err := url.Parse(ref.HTTPURL)
	if err != nil || u.Scheme == "" {
		return ref.HTTPURL
	}
	u.User = url.UserPassword(TokenUser(cfg.Host), cfg.Token)
	return u.String()
}

// RedactURL removes credentials from a clone URL for display.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
