package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_Unmarshal(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"6m","b":1000000000}`), &v))
	assert.Equal(t, 6*time.Minute, v.A.Duration)
	assert.Equal(t, time.Second, v.B.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"soon"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestDuration_Marshal(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 30 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"30s"`, string(b))
}
