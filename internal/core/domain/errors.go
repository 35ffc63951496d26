package domain

import "go.trai.ch/zerr"

var (
	// ErrCommandFailed is returned when an external command exits non-zero.
	ErrCommandFailed = zerr.New("command exited non-zero")

	// ErrCommandTimeout is returned when an external command exceeds its deadline.
	ErrCommandTimeout = zerr.New("command timed out")

	// ErrHashFailed is returned when the source tree hash cannot be computed.
	ErrHashFailed = zerr.New("failed to compute source tree hash")

	// ErrNotARepository is returned when the given path is not a git work tree.
	ErrNotARepository = zerr.New("not a git repository")

	// ErrInvalidTreeHash is returned when a tree hash string is malformed.
	ErrInvalidTreeHash = zerr.New("invalid tree hash")

	// ErrInvalidDigest is returned when an image digest string is malformed.
	ErrInvalidDigest = zerr.New("invalid image digest")

	// ErrInvalidReference is returned when a registry reference cannot be constructed.
	ErrInvalidReference = zerr.New("invalid registry reference")

	// ErrBuildFailed is returned when the image build stage fails.
	ErrBuildFailed = zerr.New("image build failed")

	// ErrBuilderNotDeterministic is returned when the configured builder cannot
	// pin creation timestamps. This is a configuration error, never a silent fallback.
	ErrBuilderNotDeterministic = zerr.New("builder does not support deterministic timestamps")

	// ErrPublishFailed is returned when the image publish stage fails.
	ErrPublishFailed = zerr.New("image publish failed")

	// ErrDeployFailed is returned when the deployment stage fails.
	ErrDeployFailed = zerr.New("deployment failed")

	// ErrHealthCheckFailed is returned when a deployed app never answers its
	// health endpoint within the bounded wait.
	ErrHealthCheckFailed = zerr.New("health check failed")

	// ErrVerificationFailed marks a cache record the live system no longer
	// confirms. Stages treat it exactly like a miss, never as a hard failure.
	ErrVerificationFailed = zerr.New("cache record failed live verification")

	// ErrCacheCorrupt is returned when a cache record file cannot be parsed.
	ErrCacheCorrupt = zerr.New("cache record is corrupt")

	// ErrStoreCreateFailed is returned when a cache stage directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache directory")

	// ErrStoreReadFailed is returned when a cache record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache record")

	// ErrStoreWriteFailed is returned when a cache record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache record")

	// ErrConfigNotFound is returned when no shipper.yaml can be found.
	ErrConfigNotFound = zerr.New("could not find shipper.yaml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrAppNotFound is returned when a requested app is not defined in the config.
	ErrAppNotFound = zerr.New("app not found in configuration")

	// ErrInvalidAppName is returned when an app name contains invalid characters.
	ErrInvalidAppName = zerr.New("app name can only contain alphanumeric characters and hyphens")

	// ErrNoAppsSpecified is returned when a command needs at least one app.
	ErrNoAppsSpecified = zerr.New("no apps specified")

	// ErrPipelineFailed wraps any stage failure surfaced through the CLI.
	ErrPipelineFailed = zerr.New("pipeline failed")
)
