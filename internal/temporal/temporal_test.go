package temporal

import (
	"testing"
	"time"
)

func TestBuild_UsesCallerLocalDay(t *testing.T) {
	// 02:30 UTC on March 11 is still March 10 in New York.
	now := time.Date(2024, 3, 11, 2, 30, 0, 0, time.UTC)
	tc, err := Build("America/New_York", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TodayLocalYMD != "2024-03-10" {
		t.Fatalf("expected caller local day 2024-03-10, got %s", tc.TodayLocalYMD)
	}
	if tc.NowUTCISO != "2024-03-11T02:30:00.000Z" {
		t.Fatalf("unexpected utc iso: %s", tc.NowUTCISO)
	}
	if tc.NowLocalDisplay != "Sunday, March 10, 2024 10:30 PM EDT" {
		t.Fatalf("unexpected local display: %s", tc.NowLocalDisplay)
	}
	if tc.Tomorrow() != "2024-03-11" {
		t.Fatalf("unexpected tomorrow: %s", tc.Tomorrow())
	}
}

func TestBuild_AheadOfUTC(t *testing.T) {
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	tc, err := Build("Asia/Tokyo", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TodayLocalYMD != "2024-03-11" {
		t.Fatalf("expected 2024-03-11 in Tokyo, got %s", tc.TodayLocalYMD)
	}
}

func TestBuild_IndependentOfProcessZone(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.FixedZone("host", 14*3600))
	tc, err := Build("UTC", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TodayLocalYMD != "2024-03-09" {
		t.Fatalf("expected UTC day 2024-03-09, got %s", tc.TodayLocalYMD)
	}
}

func TestBuild_RejectsUnknownZone(t *testing.T) {
	if _, err := Build("Nowhere/Special", time.Now()); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
	if _, err := Build("  ", time.Now()); err == nil {
		t.Fatal("expected error for blank timezone")
	}
}

func TestBuild_RejectsProcessZone(t *testing.T) {
	for _, tz := range []string{"Local", " Local "} {
		if _, err := Build(tz, time.Now()); err == nil {
			t.Fatalf("expected error for %q", tz)
		}
	}
	if _, err := LoadLocation("Local"); err == nil {
		t.Fatal("expected LoadLocation to reject Local")
	}
}
