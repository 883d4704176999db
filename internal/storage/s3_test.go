package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL("", true))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "http://already:9000", endpointURL("http://already:9000", true))
}
