package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatConfigSchema(t *testing.T) {
	assert.Equal(t, "config/1", FormatConfigSchema(1))
	assert.Equal(t, "config/10", FormatConfigSchema(10))
}

func TestParseConfigVersion(t *testing.T) {
	tests := []struct {
		schema    string
		expected  int
		expectErr bool
	}{
		{"config/1", 1, false},
		{"config/12", 12, false},
		{"config/0", 0, true},
		{"config/x", 0, true},
		{"board/1", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			got, err := ParseConfigVersion(tt.schema)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMinCardmanVersionCompleteness(t *testing.T) {
	for v := 1; v <= CurrentConfigVersion; v++ {
		_, ok := MinCardmanVersion[FormatConfigSchema(v)]
		assert.True(t, ok, "missing MinCardmanVersion entry for %s", FormatConfigSchema(v))
	}
}

func TestInvalidConfigSchema_FutureVersion(t *testing.T) {
	err := InvalidConfigSchema("/tmp/config.toml", "config/99")

	var sve *SchemaVersionError
	require.ErrorAs(t, err, &sve)
	assert.Equal(t, "a newer version", sve.MinRequired)
	assert.Contains(t, err.Error(), "requires cardman >= a newer version")
}

func TestInvalidConfigSchema_Garbage(t *testing.T) {
	err := InvalidConfigSchema("/tmp/config.toml", "nonsense")

	var sve *SchemaVersionError
	require.ErrorAs(t, err, &sve)
	assert.Empty(t, sve.MinRequired)
	assert.Contains(t, err.Error(), "found nonsense, expected config/1")
}
