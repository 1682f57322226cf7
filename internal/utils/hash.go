package utils

import (
	"fmt"
	"hash/fnv"
)

// ScriptFingerprint identifies a set of input chunks independent of how they were uploaded.
func ScriptFingerprint(chunks []string) string {
	h := fnv.New64a()
	for _, c := range chunks {
		_, _ = h.Write([]byte(c))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
