//go:build tools

// Package tools pins development tools used by the countme module.
package tools

import _ "github.com/golangci/golangci-lint/cmd/golangci-lint"
