package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("trace"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, GetLevel("nonsense"))
}
