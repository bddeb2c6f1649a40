//go:build !race

package countme

const raceBuild = false
