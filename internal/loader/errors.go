package loader

import "errors"

var (
	// ErrAdmissionRejected means every load slot was busy. Nothing was
	// started and nothing changed; retry on a later tick.
	ErrAdmissionRejected = errors.New("chunk load rejected: no free load slot")
	// ErrLoadTimeout means the load ran past MaxLoadingTime. The key was
	// rolled back to UNLOADED.
	ErrLoadTimeout = errors.New("chunk load timed out")
	// ErrLoadCancelled means the load was superseded, usually by viewer
	// movement. It is not reported as a completion.
	ErrLoadCancelled = errors.New("chunk load cancelled")
	// ErrLoaderClosed is returned for loads requested after Shutdown.
	ErrLoaderClosed = errors.New("chunk loader is shut down")
	// ErrShutdownForced is returned by Shutdown when workers did not drain
	// within the grace period and running builds were cancelled.
	ErrShutdownForced = errors.New("chunk loader shutdown forced after grace period")
	// ErrLoadPending is returned by Handle.Result before the handle resolves.
	ErrLoadPending = errors.New("chunk load still pending")
	// ErrBuildPanicked wraps a panic recovered from a chunk build.
	ErrBuildPanicked = errors.New("chunk build panicked")
)
