package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	c := DefaultConfig()
	c.DataDir = "/tmp/corpus"
	c.OutFile = "/tmp/out.json"
	return c
}

func TestDefaultConfigValidWithRequiredFieldsSet(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRequiresDataDir(t *testing.T) {
	c := validConfig()
	c.DataDir = ""
	assert.ErrorIs(t, c.Validate(), ErrConfiguration)
}

func TestValidateRequiresOutFile(t *testing.T) {
	c := validConfig()
	c.OutFile = ""
	assert.ErrorIs(t, c.Validate(), ErrConfiguration)
}

func TestValidateRejectsZeroMaxDepth(t *testing.T) {
	c := validConfig()
	c.MaxDepth = 0
	assert.ErrorIs(t, c.Validate(), ErrConfiguration)
}

func TestValidateRejectsZeroNPixels(t *testing.T) {
	c := validConfig()
	c.NPixels = 0
	assert.ErrorIs(t, c.Validate(), ErrConfiguration)
}

func TestValidateRejectsZeroNUV(t *testing.T) {
	c := validConfig()
	c.NUV = 0
	assert.ErrorIs(t, c.Validate(), ErrConfiguration)
}

func TestValidateRejectsZeroNThreads(t *testing.T) {
	c := validConfig()
	c.NThreads = 0
	assert.ErrorIs(t, c.Validate(), ErrConfiguration)
}
