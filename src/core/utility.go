// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"unsafe"
)

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// SliceUint32 reslices bytes into a uint32, that is used
// to sumbit vulkan shaders for processing. Trailing bytes
// that do not fill a whole word are dropped.
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return []uint32{}
	}
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:len(data)/4]
}

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}

// appendUnique appends the strings from add that are not in list yet
func appendUnique(list []string, add ...string) []string {
	out := append([]string{}, list...)
	for _, a := range add {
		if !contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}
