//go:build property

package deepclone_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	deepclone "github.com/djdv/go-deepclone"
)

// TestCloneProperties checks the engine's laws over generated inputs.
func TestCloneProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("clone equals source", prop.ForAll(
		func(numbers []int, words []string) bool {
			table := make(map[string][]int, len(words))
			for i, word := range words {
				table[word] = append([]int{i}, numbers...)
			}
			clonedNumbers, err := deepclone.Clone(numbers)
			if err != nil || !reflect.DeepEqual(clonedNumbers, numbers) {
				return false
			}
			clonedTable, err := deepclone.Clone(table)
			return err == nil && reflect.DeepEqual(clonedTable, table)
		},
		gen.SliceOf(gen.Int()),
		gen.SliceOf(gen.AnyString()),
	))

	properties.Property("clone is independent of source", prop.ForAll(
		func(numbers []int) bool {
			if len(numbers) == 0 {
				return true
			}
			cloned, err := deepclone.Clone(numbers)
			if err != nil {
				return false
			}
			before := numbers[0]
			cloned[0] = before + 1
			return numbers[0] == before
		},
		gen.SliceOf(gen.Int()),
	))

	properties.Property("strings share their storage", prop.ForAll(
		func(word string) bool {
			cloned, err := deepclone.Clone([]string{word})
			if err != nil || len(cloned) != 1 {
				return false
			}
			if len(word) == 0 {
				return cloned[0] == word
			}
			return unsafe.StringData(cloned[0]) == unsafe.StringData(word)
		},
		gen.AnyString(),
	))

	properties.Property("identity entries match reachable nodes", prop.ForAll(
		func(length int) bool {
			head := &node{Number: 0}
			tail := head
			for i := 1; i < length; i++ {
				tail.Child = &node{Number: i}
				tail = tail.Child
			}
			tail.Child = head // close the ring
			seen := deepclone.NewIdentityMap()
			cloned, err := deepclone.Clone(head, deepclone.WithIdentityMap(seen))
			if err != nil || seen.Len() != length {
				return false
			}
			mapped, ok := seen.Lookup(head)
			return ok && mapped.(*node) == cloned
		},
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}
