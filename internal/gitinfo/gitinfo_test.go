package gitinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastChange_SoftFailsOutsideRepo(t *testing.T) {
	// A bare temp dir is not a work tree; the lookup must degrade, never
	// error out of an investigation.
	commit, ok := LastChange(t.TempDir(), "anything.rb")
	assert.False(t, ok)
	assert.Nil(t, commit)
}
