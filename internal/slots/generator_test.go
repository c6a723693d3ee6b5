package slots

import (
	"reflect"
	"testing"
	"time"

	"github.com/getahuddle/huddle/pkg/models"
)

// weekdayBusinessHours returns free windows covering Mon-Fri 9:00-17:00 for
// the week starting at the given Monday.
func weekdayBusinessHours(monday time.Time) []models.TimeSlot {
	var free []models.TimeSlot
	for i := 0; i < 5; i++ {
		day := monday.AddDate(0, 0, i)
		free = append(free, models.TimeSlot{
			Start: day.Add(9 * time.Hour),
			End:   day.Add(17 * time.Hour),
		})
	}
	return free
}

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

func TestGenerate_Deterministic(t *testing.T) {
	in := Input{
		FreeA:   weekdayBusinessHours(monday),
		FreeB:   weekdayBusinessHours(monday),
		Horizon: models.TimeSlot{Start: monday, End: monday.AddDate(0, 0, 14)},
	}
	c := Constraints{DurationMinutes: 60}

	first, _ := Generate(in, c)
	if len(first) == 0 {
		t.Fatal("expected candidates")
	}
	for i := 0; i < 5; i++ {
		again, _ := Generate(in, c)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different slot list", i)
		}
	}
	for i := 1; i < len(first); i++ {
		if !first[i-1].Start.Before(first[i].Start) {
			t.Fatalf("slots not strictly ascending at index %d", i)
		}
	}
}

func TestGenerate_SlotsAvoidBusyAndSpanDurationPlusBuffers(t *testing.T) {
	horizon := models.TimeSlot{Start: monday, End: monday.AddDate(0, 0, 7)}
	busyA := []models.TimeSlot{
		{Start: monday.Add(10 * time.Hour), End: monday.Add(12 * time.Hour)},
	}
	in := Input{
		FreeA:   FreeWindows(busyA, horizon),
		FreeB:   FreeWindows(nil, horizon),
		Horizon: horizon,
	}
	c := Constraints{
		DurationMinutes: 45,
		Buffer:          models.TravelBuffer{BeforeMinutes: 15, AfterMinutes: 15},
	}

	got, flags := Generate(in, c)
	if flags.HasNoCommonTime {
		t.Fatal("expected common time")
	}
	want := time.Duration(45+15+15) * time.Minute
	for _, s := range got {
		if s.Duration() != want {
			t.Fatalf("slot span = %v, want %v", s.Duration(), want)
		}
		for _, b := range busyA {
			if s.Overlaps(b) {
				t.Fatalf("slot %v overlaps busy interval %v", s, b)
			}
		}
	}
}

func TestGenerate_FallbackMonotonicity(t *testing.T) {
	// Free time only on Wednesday afternoon; the hour filter asks for
	// mornings, so the base attempt must fail and relaxation 1 must be
	// the step that produces results.
	wednesday := monday.AddDate(0, 0, 2)
	free := []models.TimeSlot{
		{Start: wednesday.Add(13 * time.Hour), End: wednesday.Add(17 * time.Hour)},
	}
	in := Input{
		FreeA:   free,
		FreeB:   free,
		Horizon: models.TimeSlot{Start: monday, End: monday.AddDate(0, 0, 7)},
	}
	c := Constraints{
		DurationMinutes: 60,
		Hours: models.SchedulableHours{
			"wednesday": {{Start: "09:00", End: "12:00"}},
		},
		Dates: &models.SchedulableDates{Start: monday, End: monday.AddDate(0, 0, 6)},
	}

	got, flags := Generate(in, c)
	if flags.HasNoCommonTime {
		t.Fatal("relaxation should have found afternoon slots")
	}
	if len(got) == 0 {
		t.Fatal("expected slots after dropping the hour filter")
	}
	// Every result must still respect the (unrelaxed) date range.
	for _, s := range got {
		if s.Start.Before(monday) || s.End.After(monday.AddDate(0, 0, 7)) {
			t.Fatalf("slot %v escaped the date range before the range was relaxed", s)
		}
	}
}

func TestGenerate_DateRangeWidening(t *testing.T) {
	// No free time inside the requested two-day range, but plenty the
	// following week. Widening end to start+7d must cover it.
	nextMonday := monday.AddDate(0, 0, 7)
	free := []models.TimeSlot{
		{Start: monday.AddDate(0, 0, 5).Add(10 * time.Hour), End: monday.AddDate(0, 0, 5).Add(12 * time.Hour)},
	}
	in := Input{
		FreeA:   free,
		FreeB:   free,
		Horizon: models.TimeSlot{Start: monday, End: nextMonday.AddDate(0, 0, 7)},
	}
	c := Constraints{
		DurationMinutes: 60,
		Dates:           &models.SchedulableDates{Start: monday, End: monday.AddDate(0, 0, 1)},
	}

	got, flags := Generate(in, c)
	if flags.HasNoCommonTime || len(got) == 0 {
		t.Fatal("widened range should have found the Saturday window")
	}
}

func TestGenerate_FullRelaxationStillEmpty(t *testing.T) {
	in := Input{
		FreeA:   nil,
		FreeB:   weekdayBusinessHours(monday),
		Horizon: models.TimeSlot{Start: monday, End: monday.AddDate(0, 0, 7)},
	}
	got, flags := Generate(in, Constraints{DurationMinutes: 30})
	if len(got) != 0 {
		t.Fatalf("expected no slots, got %d", len(got))
	}
	if !flags.HasNoCommonTime {
		t.Error("HasNoCommonTime should be set")
	}
	if flags.HasExplicitTimeConflict {
		t.Error("HasExplicitTimeConflict should not be set for a range request")
	}
}

func TestGenerate_ExplicitInstantAvailable(t *testing.T) {
	in := Input{
		FreeA:   weekdayBusinessHours(monday),
		FreeB:   weekdayBusinessHours(monday),
		Horizon: models.TimeSlot{Start: monday, End: monday.AddDate(0, 0, 7)},
	}
	start := monday.AddDate(0, 0, 1).Add(10 * time.Hour) // Tuesday 10:00
	c := Constraints{
		DurationMinutes: 60,
		Buffer:          models.TravelBuffer{BeforeMinutes: 30},
		ExplicitStart:   &start,
	}

	got, flags := Generate(in, c)
	if len(got) != 1 {
		t.Fatalf("explicit request must synthesize exactly one slot, got %d", len(got))
	}
	if flags.HasExplicitTimeConflict || flags.HasNoCommonTime {
		t.Errorf("unexpected flags %+v", flags)
	}
	if want := start.Add(-30 * time.Minute); !got[0].Start.Equal(want) {
		t.Errorf("slot start = %v, want %v (buffer-normalized)", got[0].Start, want)
	}
	if want := 90 * time.Minute; got[0].Duration() != want {
		t.Errorf("slot span = %v, want %v", got[0].Duration(), want)
	}
}

func TestGenerate_ExplicitSaturdayConflict(t *testing.T) {
	// Availability Mon-Fri 9-5 only; explicit request "Saturday 3pm".
	in := Input{
		FreeA:   weekdayBusinessHours(monday),
		FreeB:   weekdayBusinessHours(monday),
		Horizon: models.TimeSlot{Start: monday, End: monday.AddDate(0, 0, 7)},
	}
	saturday := monday.AddDate(0, 0, 5).Add(15 * time.Hour)
	c := Constraints{DurationMinutes: 60, ExplicitStart: &saturday}

	got, flags := Generate(in, c)
	if !flags.HasNoCommonTime {
		t.Error("HasNoCommonTime should be set")
	}
	if !flags.HasExplicitTimeConflict {
		t.Error("HasExplicitTimeConflict should be set")
	}
	if len(got) == 0 {
		t.Fatal("conflicting explicit request must still be injected as a slot")
	}
	if !got[0].Start.Equal(saturday) {
		t.Errorf("slot 0 start = %v, want the requested instant %v", got[0].Start, saturday)
	}
}

func TestFreeWindows(t *testing.T) {
	horizon := models.TimeSlot{Start: monday, End: monday.Add(24 * time.Hour)}
	busy := []models.TimeSlot{
		{Start: monday.Add(9 * time.Hour), End: monday.Add(10 * time.Hour)},
		{Start: monday.Add(9*time.Hour + 30*time.Minute), End: monday.Add(11 * time.Hour)},
		{Start: monday.Add(15 * time.Hour), End: monday.Add(16 * time.Hour)},
	}
	free := FreeWindows(busy, horizon)
	want := []models.TimeSlot{
		{Start: monday, End: monday.Add(9 * time.Hour)},
		{Start: monday.Add(11 * time.Hour), End: monday.Add(15 * time.Hour)},
		{Start: monday.Add(16 * time.Hour), End: monday.Add(24 * time.Hour)},
	}
	if !reflect.DeepEqual(free, want) {
		t.Errorf("FreeWindows = %v, want %v", free, want)
	}
}

func TestIntersect(t *testing.T) {
	a := []models.TimeSlot{
		{Start: monday.Add(9 * time.Hour), End: monday.Add(12 * time.Hour)},
		{Start: monday.Add(14 * time.Hour), End: monday.Add(18 * time.Hour)},
	}
	b := []models.TimeSlot{
		{Start: monday.Add(11 * time.Hour), End: monday.Add(15 * time.Hour)},
	}
	got := Intersect(a, b)
	want := []models.TimeSlot{
		{Start: monday.Add(11 * time.Hour), End: monday.Add(12 * time.Hour)},
		{Start: monday.Add(14 * time.Hour), End: monday.Add(15 * time.Hour)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Intersect = %v, want %v", got, want)
	}
}
