package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shipper/internal/core/domain"
)

const (
	testTreeHash = "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"
	testDigest   = "sha256:b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
)

func TestParseTreeHash(t *testing.T) {
	t.Run("accepts a 40 hex hash", func(t *testing.T) {
		h, err := domain.ParseTreeHash(testTreeHash)
		require.NoError(t, err)
		assert.Equal(t, testTreeHash, h.String())
		assert.Equal(t, testTreeHash[:12], h.Short())
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		h, err := domain.ParseTreeHash(testTreeHash + "\n")
		require.NoError(t, err)
		assert.Equal(t, testTreeHash, h.String())
	})

	t.Run("rejects short values", func(t *testing.T) {
		_, err := domain.ParseTreeHash("abc123")
		require.ErrorIs(t, err, domain.ErrInvalidTreeHash)
	})

	t.Run("rejects non-hex characters", func(t *testing.T) {
		_, err := domain.ParseTreeHash(strings.Repeat("g", 40))
		require.ErrorIs(t, err, domain.ErrInvalidTreeHash)
	})

	t.Run("rejects uppercase hex", func(t *testing.T) {
		_, err := domain.ParseTreeHash(strings.ToUpper(testTreeHash))
		require.ErrorIs(t, err, domain.ErrInvalidTreeHash)
	})
}

func TestNewLocalImage(t *testing.T) {
	t.Run("valid digest", func(t *testing.T) {
		img, err := domain.NewLocalImage(domain.TreeHash(testTreeHash), "shipper:"+testTreeHash, testDigest)
		require.NoError(t, err)
		assert.Equal(t, testDigest, img.Digest.String())
	})

	t.Run("invalid digest", func(t *testing.T) {
		_, err := domain.NewLocalImage(domain.TreeHash(testTreeHash), "shipper:x", "not-a-digest")
		require.ErrorContains(t, err, domain.ErrInvalidDigest.Error())
	})
}

func TestNewRegistryImage(t *testing.T) {
	t.Run("derives the pullable reference", func(t *testing.T) {
		img, err := domain.NewRegistryImage("registry.fly.io", "demo-app", testDigest)
		require.NoError(t, err)
		assert.Equal(t, "registry.fly.io", img.Host)
		assert.Equal(t, "demo-app", img.Repository)
		assert.Equal(t, "registry.fly.io/demo-app@"+testDigest, img.PullRef())
	})

	t.Run("rejects a malformed digest", func(t *testing.T) {
		_, err := domain.NewRegistryImage("registry.fly.io", "demo-app", "sha256:short")
		require.ErrorContains(t, err, domain.ErrInvalidDigest.Error())
	})

	t.Run("rejects a malformed repository", func(t *testing.T) {
		_, err := domain.NewRegistryImage("registry.fly.io", "Demo App!", testDigest)
		require.ErrorContains(t, err, domain.ErrInvalidReference.Error())
	})
}

func TestCacheKeys(t *testing.T) {
	t.Run("registry key is self contained", func(t *testing.T) {
		k1 := domain.RegistryCacheKey(testDigest, "registry.fly.io", "demo-app")
		k2 := domain.RegistryCacheKey(testDigest, "registry.fly.io", "other-app")
		assert.NotEqual(t, k1, k2)
	})

	t.Run("deployment key separates apps sharing an image", func(t *testing.T) {
		k1 := domain.DeploymentCacheKey("demo-app", testDigest)
		k2 := domain.DeploymentCacheKey("staging-app", testDigest)
		assert.NotEqual(t, k1, k2)
	})
}
