package domain

import "path/filepath"

const (
	// ShipperDirName is the name of the internal workspace directory.
	ShipperDirName = ".shipper"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "shipper.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// CacheStage identifies one of the per-stage cache directories.
type CacheStage string

const (
	// StageImages holds records of locally built images, keyed by source tree hash.
	StageImages CacheStage = "images"
	// StageRegistry holds records of published images, keyed by digest+registry+repository.
	StageRegistry CacheStage = "registry"
	// StageDeployments holds records of verified deployments, keyed by app+digest.
	StageDeployments CacheStage = "deployments"
)

// Stages lists all cache stages in pipeline order.
func Stages() []CacheStage {
	return []CacheStage{StageImages, StageRegistry, StageDeployments}
}

// DefaultCachePath returns the default root directory for stage caches,
// relative to the project root. It joins .shipper and cache.
func DefaultCachePath() string {
	return filepath.Join(ShipperDirName, CacheDirName)
}

// StagePath returns the directory holding one stage's records under the
// given cache root.
func StagePath(cacheRoot string, stage CacheStage) string {
	return filepath.Join(cacheRoot, string(stage))
}
