package mkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservedSeekHeadSize(t *testing.T) {
	assert.Equal(t, 4*28+13, reservedSeekHeadSize(4))
	assert.Equal(t, 0, reservedSeekHeadSize(11))
}

func TestSeekHeadBuilderWriteEntries(t *testing.T) {
	b := newSeekHeadBuilder()
	b.add(0x1654AE6B, 100)
	b.add(0x1C53BB6B, 200)
	body, err := renderSeekHeadBody(b)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEmpty(t, body)
}
