package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "src/main.go#0000", ChunkID("src/main.go", 0))
	assert.Equal(t, "src/main.go#0042", ChunkID("src/main.go", 42))
	assert.Equal(t, "a.py#1234", ChunkID("a.py", 1234))
}

func TestChunkValidate(t *testing.T) {
	valid := Chunk{
		ID:      ChunkID("src/main.go", 3),
		DocPath: "src/main.go",
		Seq:     3,
		Text:    "package main",
	}

	tests := []struct {
		name    string
		mutate  func(c *Chunk)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Chunk) {}, wantErr: false},
		{name: "missing ID", mutate: func(c *Chunk) { c.ID = "" }, wantErr: true},
		{name: "missing path", mutate: func(c *Chunk) { c.DocPath = "" }, wantErr: true},
		{name: "negative seq", mutate: func(c *Chunk) { c.Seq = -1 }, wantErr: true},
		{name: "empty text", mutate: func(c *Chunk) { c.Text = "" }, wantErr: true},
		{name: "ID path mismatch", mutate: func(c *Chunk) { c.ID = ChunkID("other.go", 3) }, wantErr: true},
		{name: "ID seq mismatch", mutate: func(c *Chunk) { c.Seq = 4 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
