// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package version

import (
	"fmt"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in     string
		preRel string
		build  string
	}{
		{"pre", "pre", "pre"},
		{"rc1.2", "rc12", "rc1.2"},
		{"a b+c_d", "abcd", "abcd"},
		{"", "", ""},
	}

	for _, test := range tests {
		if got := NormalizePreRelString(test.in); got != test.preRel {
			t.Errorf("NormalizePreRelString(%q): got %q want %q",
				test.in, got, test.preRel)
		}
		if got := NormalizeBuildString(test.in); got != test.build {
			t.Errorf("NormalizeBuildString(%q): got %q want %q",
				test.in, got, test.build)
		}
	}
}

func TestString(t *testing.T) {
	defer func(preRel, build string) {
		PreRelease, BuildMetadata = preRel, build
	}(PreRelease, BuildMetadata)

	base := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
	tests := []struct {
		preRel, build string
		want          string
	}{
		{"", "", base},
		{"beta", "", base + "-beta"},
		{"", "abc.1", base + "+abc.1"},
		{"beta!", "a/b", base + "-beta+ab"},
	}
	for _, test := range tests {
		PreRelease, BuildMetadata = test.preRel, test.build
		if got := String(); got != test.want {
			t.Errorf("String(%q, %q): got %q want %q", test.preRel,
				test.build, got, test.want)
		}
	}
}
