package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/catalog"
)

var testKinds = catalog.Kinds{
	"logger": {Factory: noop},
	"static": {Dependencies: []string{"options"}, Factory: noop},
}

func TestLoadFile(t *testing.T) {
	c, err := catalog.LoadFile("testdata/catalog.yaml", testKinds)
	require.NoError(t, err)

	assert.Equal(t, []string{"banner", "footer", "logger"}, c.Names())
	assert.Equal(t, []string{"banner"}, c.StartupDependencies())

	d, ok := c.Get("motd")
	require.True(t, ok)
	assert.Equal(t, "banner", d.Name)
	assert.Equal(t, []string{"options"}, d.Dependencies)
	assert.Equal(t, map[string]any{"text": "{1}|welcome", "width": 80}, d.Settings)

	logger, ok := c.Get("logger")
	require.True(t, ok)
	assert.Nil(t, logger.Settings)
	assert.False(t, logger.Startup)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := catalog.LoadFile("testdata/nope.yaml", testKinds)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"mapping root", "logger: {}"},
		{"scalar root", "logger"},
		{"empty", ""},
		{"unknown kind", "- nope"},
		{"nested sequence entry", "- [logger]"},
		{"bad entry field", "- kind: static\n  aliases: notalist"},
		{"reserved name", "- kind: static\n  name: options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Load(strings.NewReader(tt.doc), testKinds)
			var invalid *catalog.InvalidConfigurationError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestLoad_Duplicate(t *testing.T) {
	_, err := catalog.Load(strings.NewReader("- logger\n- logger\n"), testKinds)

	var dup *catalog.DuplicateRegistrationError
	assert.ErrorAs(t, err, &dup)
}
