package models

import "testing"

func TestLoadingStateTransitions(t *testing.T) {
	tests := []struct {
		name        string
		state       LoadingState
		wantLoading bool
		wantFailure bool
		wantSuccess bool
	}{
		{"initial", InitialLoadingState(), false, false, true},
		{"loading", InitialLoadingState().Loading(), true, false, false},
		{"success", InitialLoadingState().Loading().Success(), false, false, true},
		{"failed", InitialLoadingState().Loading().Fail(NewFailure("boom")), false, true, false},
		{"reload after failure", InitialLoadingState().Fail(NewFailure("boom")).Loading(), true, false, false},
		{"success after failure", InitialLoadingState().Fail(NewFailure("boom")).Loading().Success(), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsLoading(); got != tt.wantLoading {
				t.Errorf("IsLoading() = %v, want %v", got, tt.wantLoading)
			}
			if got := tt.state.HasFailure(); got != tt.wantFailure {
				t.Errorf("HasFailure() = %v, want %v", got, tt.wantFailure)
			}
			if got := tt.state.IsSuccess(); got != tt.wantSuccess {
				t.Errorf("IsSuccess() = %v, want %v", got, tt.wantSuccess)
			}

			// IsSuccess must always equal !IsLoading && failure == nil.
			want := !tt.state.IsLoading() && tt.state.Failure() == nil
			if tt.state.IsSuccess() != want {
				t.Errorf("IsSuccess() = %v, derived = %v", tt.state.IsSuccess(), want)
			}
		})
	}
}

func TestLoadingStateLoadingClearsFailure(t *testing.T) {
	state := InitialLoadingState().Fail(NewFailure("boom")).Loading()

	if state.Failure() != nil {
		t.Errorf("Loading() kept failure %v", state.Failure())
	}
}

func TestLoadingStateImmutable(t *testing.T) {
	initial := InitialLoadingState()
	_ = initial.Loading()
	_ = initial.Fail(NewFailure("boom"))

	if !initial.IsSuccess() || initial.IsLoading() {
		t.Error("transitions mutated the original value")
	}
}

func TestFailureIsAPI(t *testing.T) {
	if NewFailure("plain").IsAPI() {
		t.Error("plain failure reported as API failure")
	}

	failure := NewAPIFailure("not found", "post missing", 404, "Not Found")
	if !failure.IsAPI() {
		t.Error("API failure not recognized")
	}
	if failure.Error() != "not found" {
		t.Errorf("Error() = %q, want %q", failure.Error(), "not found")
	}
}
