package taxonomy

import (
	_ "embed"
	"sync"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
)

// Default returns the taxonomy that ships with the binary.
// It panics if the embedded table is invalid, which the package tests rule out.
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := Parse(defaultYAML)
		if err != nil {
			panic("taxonomy: embedded default.yaml: " + err.Error())
		}
		defaultTax = t
	})
	return defaultTax
}
