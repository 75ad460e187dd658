package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStatus(t *testing.T) {
	assert.Equal(t, "", (&App{}).getStatus())
	assert.Equal(t, "(alice )", (&App{userName: "alice"}).getStatus())
	assert.Equal(t, "(alice online)", (&App{userName: "alice", Mode: ModeOnline}).getStatus())
	assert.Equal(t, "(offline)", (&App{Mode: ModeOffline}).getStatus())
}
