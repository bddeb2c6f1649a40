//go:build race

package countme

const raceBuild = true
