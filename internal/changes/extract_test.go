//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

package changes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBetween(t *testing.T) {
	assert.Equal(t, "b", ExtractBetween("a@b#c", "@", "#"))
	assert.Equal(t, "", ExtractBetween("abc", "x", "c"))
	assert.Equal(t, "", ExtractBetween("abc", "a", "z"))
	assert.Equal(t, "", ExtractBetween("a#b@c", "@", "#"))
	assert.Equal(t, "b@c", ExtractBetween("a@b@c#d#e", "@", "#"))
	assert.Equal(t, "src/a.go#3", ExtractBetween("//depot/main/src/a.go#3 - edit change 7 (text)", "main/", " - "))
}

func TestCleanField(t *testing.T) {
	assert.Equal(t, "Fix crash on load", CleanField("\r\n\tFix crash\ton load,\r\n"))
	assert.Equal(t, "a b c", CleanField("a,b,,c"))
	assert.Equal(t, "", CleanField(" \t\n"))
}

func TestDescriptionCascade(t *testing.T) {
	cases := []struct {
		name   string
		record string
		client string
		want   string
	}{
		{
			name:   "bug marker after client",
			record: "101 on 2020/03/02 by alice@ws1\n\n\tFix crash, on load\n\tBug #: 42\n",
			client: "ws1",
			want:   "Fix crash on load",
		},
		{
			name:   "lastreview marker",
			record: "102 on 2020/03/15 by bob@ws2\n\n\tTweak shaders\n\tlastreview=55\n",
			client: "ws2",
			want:   "Tweak shaders",
		},
		{
			// "@ws2" is directly followed by "Bug #:", so the newline pair wins.
			name:   "newline marker",
			record: "103 on 2020/03/15 by bob@ws2 Bug #: 1\n\tnewline fallback\n\tBug #: 2\n",
			client: "ws2",
			want:   "newline fallback",
		},
		{
			name:   "remainder",
			record: "104 on 2020/03/16 by dan@ws4\n\n\tPlain description for ws4 work\n",
			client: "ws4",
			want:   "Plain description for work",
		},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Description(c.record, c.client), c.name)
	}
}
