// Package file provides the TOML configuration file adapter.
//
// The file lives at ~/.repotree/config.toml unless a path is given:
//
//	url = "https://gitlab.example.com"
//	method = "ssh"
//	exclude = ["**/attic/**"]
//
//	[api]
//	concurrency = 8
//	rate_limit = 2000
//	rate_window = "1h"
package file
