// Package gitlab implements the remote API capability for GitLab.
//
// Groups map one-to-one onto tree groups and projects onto repositories.
// Listings are paged with the API's page parameter and every response's
// RateLimit-Remaining and RateLimit-Reset headers are forwarded to an
// optional RateObserver, so the core rate limiter can back off before the
// instance starts returning 429s.
//
// Project.Namespace decides whether a project was shared into a group:
// a project whose namespace differs from the listed group is shared.
package gitlab
