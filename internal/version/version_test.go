package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuild(t *testing.T, version, commit, tag, dirty string) {
	t.Helper()
	origVersion, origCommit, origTag, origDirty := Version, GitCommit, GitTag, GitDirty
	t.Cleanup(func() {
		Version, GitCommit, GitTag, GitDirty = origVersion, origCommit, origTag, origDirty
	})
	Version, GitCommit, GitTag, GitDirty = version, commit, tag, dirty
}

func TestGetVersion(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		withBuild(t, "dev", "unknown", "unknown", "")
		assert.Equal(t, "dev", GetVersion())
	})

	t.Run("ldflags", func(t *testing.T) {
		withBuild(t, "v0.4.0", "unknown", "unknown", "")
		assert.Equal(t, "v0.4.0", GetVersion())
	})

	t.Run("tag and commit", func(t *testing.T) {
		withBuild(t, "dev", "abc1234567", "v0.4.0", "")
		assert.Equal(t, "v0.4.0-abc1234", GetVersion())
	})

	t.Run("dirty tree", func(t *testing.T) {
		withBuild(t, "dev", "abc1234", "v0.4.0", "dirty")
		assert.Equal(t, "v0.4.0-abc1234-dirty", GetVersion())
	})
}

func TestGetBuildInfo(t *testing.T) {
	withBuild(t, "v0.4.0", "abc1234", "v0.4.0", "dirty")
	info := GetBuildInfo()
	assert.Equal(t, "v0.4.0", info.Version)
	assert.Equal(t, "abc1234", info.GitCommit)
	assert.True(t, info.Dirty)
	assert.Equal(t, "cssdoodle v0.4.0 (commit: abc1234)", Banner("cssdoodle"))
}
