package domain

import "time"

// Cache records are the on-disk payloads of the verification-gated cache.
// The recorded fields are claims about an external system (local image store,
// registry, deployment platform); RecordedAt is non-authoritative metadata.
// A record is only trusted after the owning stage re-verifies the claim
// against the live system.

// ImageRecord claims "this image exists locally under this name and digest".
// Keyed by source tree hash.
type ImageRecord struct {
	SourceHash string    `json:"source_hash"`
	Name       string    `json:"name"`
	Digest     string    `json:"digest"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RegistryRecord claims "this digest is fetchable from this repository".
// Keyed by digest+host+repository.
type RegistryRecord struct {
	Digest     string    `json:"digest"`
	Host       string    `json:"host"`
	Repository string    `json:"repository"`
	PullRef    string    `json:"pull_ref"`
	RecordedAt time.Time `json:"recorded_at"`
}

// DeploymentRecord claims "this app serves this image and answers its health
// endpoint". Keyed by app+digest. ConfigHash fingerprints the app spec so a
// config-only change is never masked by an unchanged image.
type DeploymentRecord struct {
	App        string    `json:"app"`
	Digest     string    `json:"digest"`
	ConfigHash string    `json:"config_hash"`
	URL        string    `json:"url"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ImageCacheKey returns the cache key for a built image.
func ImageCacheKey(hash TreeHash) string {
	return hash.String()
}

// RegistryCacheKey returns the cache key for a published image.
func RegistryCacheKey(digest, host, repository string) string {
	return digest + "|" + host + "|" + repository
}

// DeploymentCacheKey returns the cache key for a deployment.
func DeploymentCacheKey(app, digest string) string {
	return app + "|" + digest
}
