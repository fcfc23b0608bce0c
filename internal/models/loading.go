package models

// Failure describes a terminal error folded into client state for display.
// A zero Status marks a plain failure; API failures carry the HTTP detail.
type Failure struct {
	Message    string
	Inner      string
	Status     int
	StatusText string
}

// NewFailure creates a plain failure with only a message.
func NewFailure(message string) *Failure {
	return &Failure{Message: message}
}

// NewAPIFailure creates a failure carrying transport-layer detail.
func NewAPIFailure(message, inner string, status int, statusText string) *Failure {
	return &Failure{Message: message, Inner: inner, Status: status, StatusText: statusText}
}

// IsAPI reports whether the failure originated at the HTTP boundary.
func (f *Failure) IsAPI() bool {
	return f.Status != 0
}

func (f *Failure) Error() string {
	return f.Message
}

// LoadingState tracks the status of one asynchronous operation.
// The zero value is the initial (idle) state.
type LoadingState struct {
	isLoading bool
	failure   *Failure
}

// InitialLoadingState returns the idle state.
func InitialLoadingState() LoadingState {
	return LoadingState{}
}

// Loading returns a loading state, clearing any prior failure.
func (s LoadingState) Loading() LoadingState {
	return LoadingState{isLoading: true}
}

// Success returns a finished state with no failure.
func (s LoadingState) Success() LoadingState {
	return LoadingState{}
}

// Fail returns a finished state carrying the given failure.
func (s LoadingState) Fail(failure *Failure) LoadingState {
	return LoadingState{failure: failure}
}

func (s LoadingState) IsLoading() bool {
	return s.isLoading
}

func (s LoadingState) Failure() *Failure {
	return s.failure
}

func (s LoadingState) HasFailure() bool {
	return s.failure != nil
}

// IsSuccess holds exactly when the state is neither loading nor failed.
func (s LoadingState) IsSuccess() bool {
	return !s.isLoading && !s.HasFailure()
}
