//go:build deepclone_debug

package deepclone

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
