package uriutil

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX path semantics")
	}
}

func TestPathToURI(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "absolute path", input: "/home/user/project", expected: "file:///home/user/project"},
		{name: "root", input: "/", expected: "file:///"},
		{name: "spaces are encoded", input: "/tmp/My Site/index.html", expected: "file:///tmp/My%20Site/index.html"},
		{name: "unicode is encoded", input: "/tmp/café", expected: "file:///tmp/caf%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PathToURI(tt.input))
		})
	}
}

func TestURIToPath(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "file URI", input: "file:///home/user/index.html", expected: "/home/user/index.html"},
		{name: "percent-decoded", input: "file:///tmp/My%20Site", expected: "/tmp/My Site"},
		{name: "localhost host", input: "file://localhost/etc/hosts", expected: "/etc/hosts"},
		{name: "drive letter", input: "file:///C:/proj", expected: "C:/proj"},
		{name: "not a file URI", input: "untitled:Untitled-1", expected: "untitled:Untitled-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, URIToPath(tt.input))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	skipOnWindows(t)

	for _, p := range []string{"/a/b.html", "/with space/x", "/ünï/cödé"} {
		assert.Equal(t, p, URIToPath(PathToURI(p)))
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://cdn.example.com/x.js"))
	assert.True(t, IsRemote("HTTP://example.com"))
	assert.True(t, IsRemote("//cdn.example.com/x.js"))
	assert.False(t, IsRemote("./x.js"))
	assert.False(t, IsRemote("/x.js"))
}

func TestResolveReference(t *testing.T) {
	skipOnWindows(t)

	doc := "file:///site/pages/index.html"
	root := "file:///site"

	tests := []struct {
		name   string
		ref    string
		root   string
		want   string
		wantOK bool
	}{
		{name: "relative", ref: "./app.js", root: root, want: "file:///site/pages/app.js", wantOK: true},
		{name: "parent", ref: "../lib/x.js", root: root, want: "file:///site/lib/x.js", wantOK: true},
		{name: "rooted uses workspace", ref: "/js/main.js", root: root, want: "file:///site/js/main.js", wantOK: true},
		{name: "rooted without workspace", ref: "/js/main.js", root: "", want: "file:///js/main.js", wantOK: true},
		{name: "query dropped", ref: "app.js?v=2", root: root, want: "file:///site/pages/app.js", wantOK: true},
		{name: "encoded", ref: "my%20app.js", root: root, want: "file:///site/pages/my%20app.js", wantOK: true},
		{name: "remote", ref: "https://cdn.example.com/x.js", root: root, want: "https://cdn.example.com/x.js", wantOK: true},
		{name: "protocol relative", ref: "//cdn.example.com/x.js", root: root, want: "https://cdn.example.com/x.js", wantOK: true},
		{name: "empty", ref: "  ", root: root, wantOK: false},
		{name: "fragment only", ref: "#top", root: root, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveReference(doc, tt.root, tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
