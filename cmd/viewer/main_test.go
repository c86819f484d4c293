package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	a, err := parseArgs([]string{"scene.glb"})
	require.NoError(t, err)
	assert.Equal(t, args{scene: "scene.glb"}, a)

	a, err = parseArgs([]string{"scene.gltf", "1280", "720"})
	require.NoError(t, err)
	assert.Equal(t, args{scene: "scene.gltf", width: 1280, height: 720}, a)
}

func TestParseArgsRejects(t *testing.T) {
	for _, argv := range [][]string{
		nil,
		{"scene.glb", "800"},
		{"scene.glb", "wide", "600"},
		{"scene.glb", "800", "0"},
		{"a", "b", "c", "d"},
	} {
		_, err := parseArgs(argv)
		assert.ErrorIs(t, err, errUsage, "%q", argv)
	}
}
