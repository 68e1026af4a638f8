package model

import "testing"

func TestResultIsValid(t *testing.T) {
	for _, r := range []Result{ResultSuccess, ResultFailure, ResultCancelled, ResultSkipped} {
		if !r.IsValid() {
			t.Errorf("Result(%q).IsValid() = false, want true", r)
		}
	}
	for _, r := range []Result{"", "ok", "error", "timed_out", "SUCCESS"} {
		if r.IsValid() {
			t.Errorf("Result(%q).IsValid() = true, want false", r)
		}
	}
}

func TestResultPassing(t *testing.T) {
	for _, tc := range []struct {
		result Result
		want   bool
	}{
		{ResultSuccess, true},
		{ResultSkipped, true},
		{ResultFailure, false},
		{ResultCancelled, false},
	} {
		if got := tc.result.Passing(); got != tc.want {
			t.Errorf("Result(%q).Passing() = %v, want %v", tc.result, got, tc.want)
		}
	}
}

func TestConclusionIsValid(t *testing.T) {
	for _, c := range []Conclusion{ConclusionPending, ConclusionSuccess, ConclusionFailure} {
		if !c.IsValid() {
			t.Errorf("Conclusion(%q).IsValid() = false, want true", c)
		}
	}
	if Conclusion("cancelled").IsValid() {
		t.Error("Conclusion(\"cancelled\").IsValid() = true, want false")
	}
}

func TestTriggerIsValid(t *testing.T) {
	for _, tr := range []Trigger{TriggerPullRequest, TriggerMergeGroup, TriggerPush} {
		if !tr.IsValid() {
			t.Errorf("Trigger(%q).IsValid() = false, want true", tr)
		}
	}
	if Trigger("schedule").IsValid() {
		t.Error("Trigger(\"schedule\").IsValid() = true, want false")
	}
}
