package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortRevTruncatesLongHashes(t *testing.T) {
	assert.Equal(t, "a3f8c2d1", shortRev("a3f8c2d1e9b74c55"))
	assert.Equal(t, "abc", shortRev("abc"))
}

func TestFullCombinesAppNameAndCommit(t *testing.T) {
	assert.Equal(t, AppName+"/"+GitCommit, Full())
	assert.NotEmpty(t, GitCommit)
}
