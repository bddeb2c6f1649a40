//go:build !debug

package countme

const debugBuild = false
