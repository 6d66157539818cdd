package ir

import (
	"slices"
	"unicode/utf16"
)

// IRValue is the closed set of values allowed in canonical JSON:
// IRString, IRInt, IRBool, IRArray and IRObject. There is no float and
// no null.
type IRValue interface {
	irValue()
}

// IRString is a string value.
type IRString string

// IRInt is an integer value.
type IRInt int64

// IRBool is a boolean value.
type IRBool bool

// IRArray is an ordered list of values.
type IRArray []IRValue

// IRObject is a string-keyed object. Iterate with SortedKeys.
type IRObject map[string]IRValue

func (IRString) irValue() {}
func (IRInt) irValue()    {}
func (IRBool) irValue()   {}
func (IRArray) irValue()  {}
func (IRObject) irValue() {}

// SortedKeys returns the keys in RFC 8785 order (UTF-16 code units).
// This differs from Go's byte-wise string order for astral characters.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}
