package scheduler

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dubplan/backend/internal/models"
)

func at(hhmm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", "2023-01-01 "+hhmm, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func iv(from, to string) models.Interval {
	return models.Interval{Start: at(from), End: at(to)}
}

func seg(id int, seconds float64, speakers ...string) models.Segment {
	return models.Segment{ID: id, Speakers: speakers, NumSpeakers: len(speakers), TotalSeconds: seconds}
}

func TestScheduleWholeSlotOverlap(t *testing.T) {
	segments := []models.Segment{seg(1, 300, "A", "B"), seg(2, 100, "C")}
	avail := models.Availability{
		"A": {iv("09:00", "10:00")},
		"B": {iv("09:00", "10:00")},
		"C": {iv("09:30", "10:00")},
	}
	res := Schedule(segments, avail, []models.Interval{iv("09:00", "10:00")}, zerolog.Nop())

	require.Len(t, res.Assignments, 2)
	assert.Empty(t, res.Unassigned)

	first := res.Assignments[0]
	assert.Equal(t, 1, first.SegmentID)
	assert.Equal(t, models.StatusAssigned, first.Status)
	assert.Equal(t, at("09:00"), *first.Start)
	assert.Equal(t, at("09:05"), *first.End)

	second := res.Assignments[1]
	assert.Equal(t, 2, second.SegmentID)
	assert.Equal(t, at("09:05"), *second.Start)
	assert.Equal(t, at("09:05").Add(100*time.Second), *second.End)

	require.Len(t, res.RemainingSlots, 1)
	assert.Equal(t, at("09:05").Add(100*time.Second), res.RemainingSlots[0].Start)
}

func TestScheduleNeverUsesShortSlot(t *testing.T) {
	segments := []models.Segment{seg(1, 3600, "A")}
	avail := models.Availability{"A": {iv("08:00", "20:00")}}
	res := Schedule(segments, avail, []models.Interval{iv("09:00", "09:30"), iv("10:00", "10:59")}, zerolog.Nop())

	assert.Equal(t, []int{1}, res.Unassigned)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, models.StatusUnassigned, res.Assignments[0].Status)
	assert.Nil(t, res.Assignments[0].Start)
}

func TestScheduleRequiresEverySpeaker(t *testing.T) {
	segments := []models.Segment{seg(1, 60, "A", "B"), seg(2, 60, "A")}
	avail := models.Availability{
		"A": {iv("09:00", "12:00")},
		"B": {iv("13:00", "14:00")},
	}
	res := Schedule(segments, avail, []models.Interval{iv("09:00", "10:00")}, zerolog.Nop())

	assert.Equal(t, []int{1}, res.Unassigned)
	assigned, unassigned := res.Counts()
	assert.Equal(t, 1, assigned)
	assert.Equal(t, 1, unassigned)
}

func TestScheduleMissingSpeakerIsUnavailable(t *testing.T) {
	res := Schedule([]models.Segment{seg(1, 60, "GHOST")}, models.Availability{}, []models.Interval{iv("09:00", "10:00")}, zerolog.Nop())
	assert.Equal(t, []int{1}, res.Unassigned)
}

func TestSchedulePriorityOrder(t *testing.T) {
	segments := []models.Segment{
		seg(1, 600, "A"),
		seg(2, 60, "A", "B", "C"),
		seg(3, 120, "A", "B"),
		seg(4, 300, "A", "B"),
		seg(5, 0, "A"),
		{ID: 6, TotalSeconds: 60},
	}
	avail := models.Availability{
		"A": {iv("08:00", "18:00")},
		"B": {iv("08:00", "18:00")},
		"C": {iv("08:00", "18:00")},
	}
	res := Schedule(segments, avail, []models.Interval{iv("09:00", "12:00")}, zerolog.Nop())

	ids := make([]int, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		ids = append(ids, a.SegmentID)
	}
	assert.Equal(t, []int{2, 4, 3, 1}, ids)
	assert.Equal(t, at("09:00"), *res.Assignments[0].Start)
	assert.Equal(t, at("09:01"), *res.Assignments[1].Start)
	assert.Equal(t, at("09:06"), *res.Assignments[2].Start)
	assert.Equal(t, at("09:08"), *res.Assignments[3].Start)
}

func TestScheduleMovesToNextSlotWhenConsumed(t *testing.T) {
	segments := []models.Segment{seg(1, 1800, "A"), seg(2, 1800, "A"), seg(3, 600, "A")}
	avail := models.Availability{"A": {iv("08:00", "18:00")}}
	slots := []models.Interval{iv("14:00", "14:30"), iv("09:00", "09:30")}
	res := Schedule(segments, avail, slots, zerolog.Nop())

	assert.Equal(t, at("09:00"), *res.Assignments[0].Start)
	assert.Equal(t, at("14:00"), *res.Assignments[1].Start)
	assert.Equal(t, []int{3}, res.Unassigned)
	assert.Empty(t, res.RemainingSlots)
}

func TestSlotPoolConsume(t *testing.T) {
	pool := NewSlotPool([]models.Interval{iv("10:00", "11:00"), iv("09:00", "09:10")})
	require.Equal(t, 2, pool.Len())
	assert.Equal(t, at("09:00"), pool.At(0).Start)

	used := pool.Consume(0, 10*time.Minute)
	assert.Equal(t, iv("09:00", "09:10"), used)
	require.Equal(t, 1, pool.Len())

	pool.Consume(0, 15*time.Minute)
	assert.Equal(t, iv("10:15", "11:00"), pool.At(0))
}

func TestEvaluateSlot(t *testing.T) {
	avail := models.Availability{"A": {iv("09:00", "10:00")}}
	eval := EvaluateSlot(seg(1, 60, "A", "B"), iv("09:00", "10:00"), avail)
	assert.False(t, eval.Fits)
	assert.Equal(t, "SPEAKER_UNAVAILABLE", eval.ReasonCode)
	assert.Equal(t, []string{"B"}, eval.Missing)

	eval = EvaluateSlot(seg(1, 7200, "A"), iv("09:00", "10:00"), avail)
	assert.Equal(t, "SLOT_TOO_SHORT", eval.ReasonCode)
}

func TestSummarizeIdleTime(t *testing.T) {
	start1, end1 := at("09:00"), at("09:05")
	start2, end2 := at("09:10"), at("09:20")
	assignments := []models.Assignment{
		{SegmentID: 2, Speakers: []string{"A"}, DurationSeconds: 600, Start: &start2, End: &end2, Status: models.StatusAssigned},
		{SegmentID: 1, Speakers: []string{"A", "B"}, DurationSeconds: 300, Start: &start1, End: &end1, Status: models.StatusAssigned},
		{SegmentID: 3, Speakers: []string{"A"}, DurationSeconds: 60, Status: models.StatusUnassigned},
	}
	sums := Summarize(assignments, zerolog.Nop())
	require.Len(t, sums, 2)

	a := sums[0]
	assert.Equal(t, "A", a.Speaker)
	assert.Equal(t, 900.0, a.TotalScheduledSeconds)
	assert.Equal(t, 2, a.SegmentCount)
	assert.Equal(t, 300.0, a.IdleSeconds)
	assert.Equal(t, at("09:00"), a.RangeStart)
	assert.Equal(t, at("09:20"), a.RangeEnd)
	assert.Equal(t, []models.Interval{iv("09:00", "09:05"), iv("09:10", "09:20")}, a.Ranges)

	b := sums[1]
	assert.Equal(t, "B", b.Speaker)
	assert.Equal(t, 0.0, b.IdleSeconds)
}

func TestSummarizeOverlappingRangesHaveNoIdle(t *testing.T) {
	s1, e1 := at("09:00"), at("10:00")
	s2, e2 := at("09:30"), at("09:45")
	sums := Summarize([]models.Assignment{
		{SegmentID: 1, Speakers: []string{"A"}, DurationSeconds: 3600, Start: &s1, End: &e1, Status: models.StatusAssigned},
		{SegmentID: 2, Speakers: []string{"A"}, DurationSeconds: 900, Start: &s2, End: &e2, Status: models.StatusAssigned},
	}, zerolog.Nop())
	require.Len(t, sums, 1)
	assert.Equal(t, 0.0, sums[0].IdleSeconds)
	assert.Equal(t, at("10:00"), sums[0].RangeEnd)
}

func TestParseAvailabilityDropsMalformed(t *testing.T) {
	avail := ParseAvailability(map[string][]string{
		"A": {"2023-01-01 09:00-10:00", "tomorrow"},
		"B": {"junk"},
	}, zerolog.Nop())
	assert.Len(t, avail["A"], 1)
	assert.Empty(t, avail["B"])
}

func TestDefaultRecordingSlots(t *testing.T) {
	slots := DefaultRecordingSlots(at("15:00"), 0, "", zerolog.Nop())
	require.Len(t, slots, 6)
	assert.Equal(t, iv("09:00", "17:00"), slots[0])
	assert.Equal(t, at("09:00").AddDate(0, 0, 5), slots[5].Start)
}

func TestBuildCalendar(t *testing.T) {
	avail := models.Availability{"A": {iv("09:00", "10:00")}, "B": {iv("09:45", "11:00")}}
	cal := BuildCalendar([]string{"A", "B"}, avail, []models.Interval{iv("09:00", "09:30")}, CalendarOptions{From: at("12:00")})

	require.Len(t, cal.Cells, 7*24)
	first := cal.Cells[0]
	assert.Equal(t, at("08:00"), first.Start)
	assert.Empty(t, first.Available)
	assert.False(t, first.Recording)

	nine := cal.Cells[2]
	assert.Equal(t, at("09:00"), nine.Start)
	assert.Equal(t, []string{"A"}, nine.Available)
	assert.True(t, nine.Recording)

	nineThirty := cal.Cells[3]
	assert.Equal(t, []string{"A", "B"}, nineThirty.Available)
	assert.False(t, nineThirty.Recording)
}
