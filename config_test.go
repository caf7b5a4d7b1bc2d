package predylogic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Printf(format string, v ...any) {
	r.lines = append(r.lines, format)
}

func TestNewConfigAppliesDefaults(t *testing.T) {
	c := NewConfig()
	require.NotNil(t, c.Logger)
	require.NotNil(t, c.Properties)
}

func TestWithLoggerOverridesDefault(t *testing.T) {
	rec := &recordingLogger{}
	c := NewConfig(WithLogger(rec))
	c.Logger.Printf("hello")
	require.Equal(t, []string{"hello"}, rec.lines)
}

func TestWithPropertiesSetsGlobalMap(t *testing.T) {
	c := NewConfig(WithProperties(map[string]string{"env": "prod"}))
	require.Equal(t, "prod", c.Properties["env"])
}
