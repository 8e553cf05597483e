//go:build !deepclone_debug

package deepclone

const debugging = false

func assert(bool, string) {}
