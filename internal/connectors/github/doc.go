// Package github implements the remote API capability for GitHub and
// GitHub Enterprise Server.
//
// # Mapping
//
// GitHub has a flat namespace, so the tree it produces is two levels deep:
//
//   - Organisations of the authenticated user become top-level groups.
//     Organisations never have subgroups.
//   - Repositories of an organisation become its repositories. Forks are
//     reported as shared repositories and are only listed when shared
//     repositories are requested.
//   - In user mode the repositories owned by the user are listed.
//
// # Authentication
//
// Personal access tokens and OAuth access tokens are both sent as bearer
// tokens. Clone URLs over HTTPS embed the token as x-access-token.
//
// # Rate limiting
//
// go-github parses the X-RateLimit-* headers of every response; the
// remaining count and reset time are forwarded to an optional
// RateObserver. Primary and secondary rate limit errors are reported as
// domain.ErrRateLimited.
//
// # Enterprise
//
// Any base URL whose host is not github.com is treated as a GitHub
// Enterprise Server instance and the API is addressed under /api/v3/.
package github
