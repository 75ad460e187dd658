package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-k", "Secrets.toml", "-a", ":8080"},
			allowed: []string{"-k"},
			want:    []string{"-k", "Secrets.toml"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=cfg.json", "-a", ":8080"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=cfg.json"},
		},
		{
			name:    "unknown flags dropped",
			args:    []string{"-x", "1", "-y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next arg is a flag",
			args:    []string{"-c", "-a"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestStringFlagFrom(t *testing.T) {
	assert.Equal(t, "a.toml", stringFlagFrom([]string{"-k", "a.toml"}, "Secrets.toml", "k", "secrets"))
	assert.Equal(t, "b.toml", stringFlagFrom([]string{"-secrets=b.toml", "-a", ":1"}, "Secrets.toml", "k", "secrets"))
	assert.Equal(t, "Secrets.toml", stringFlagFrom([]string{"-a", ":1"}, "Secrets.toml", "k", "secrets"))
}

func TestJsonConfigFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bin", "-c", "conf.json", "-a", ":9"}
	assert.Equal(t, "conf.json", JsonConfigFlags())

	os.Args = []string{"bin"}
	assert.Equal(t, "", JsonConfigFlags())
}
