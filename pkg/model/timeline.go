package model

import (
	"encoding/json"
	"time"
)

const ActionSubmitted = "Application submitted"

type TimelineEntry struct {
	Action      string    `json:"action"`
	PerformedBy string    `json:"performed_by"`
	Timestamp   time.Time `json:"timestamp"`
	Details     string    `json:"details,omitempty"`
}

// Timeline is the append-only audit log of an application. Entries are kept
// in non-decreasing timestamp order and never modified once appended.
type Timeline struct {
	entries []TimelineEntry
}

func NewTimeline(entries ...TimelineEntry) Timeline {
	var t Timeline
	for _, e := range entries {
		t = t.Append(e)
	}
	return t
}

// Append returns a timeline with e added at the end. An entry stamped earlier
// than the current tail is clamped to the tail's timestamp.
func (t Timeline) Append(e TimelineEntry) Timeline {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if n := len(t.entries); n > 0 && e.Timestamp.Before(t.entries[n-1].Timestamp) {
		e.Timestamp = t.entries[n-1].Timestamp
	}
	next := make([]TimelineEntry, len(t.entries), len(t.entries)+1)
	copy(next, t.entries)
	return Timeline{entries: append(next, e)}
}

func (t Timeline) Len() int { return len(t.entries) }

// Entries returns a copy of the log.
func (t Timeline) Entries() []TimelineEntry {
	out := make([]TimelineEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Last returns the newest entry.
func (t Timeline) Last() (TimelineEntry, bool) {
	if len(t.entries) == 0 {
		return TimelineEntry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

func (t Timeline) MarshalJSON() ([]byte, error) {
	if t.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.entries)
}

func (t *Timeline) UnmarshalJSON(b []byte) error {
	var entries []TimelineEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	*t = NewTimeline(entries...)
	return nil
}

func SubmittedEntry(candidateID string, at time.Time) TimelineEntry {
	return TimelineEntry{
		Action:      ActionSubmitted,
		PerformedBy: candidateID,
		Timestamp:   at,
		Details:     "Application was submitted for the job",
	}
}

func StatusChangedEntry(status ApplicationStatus, actorID, details string, at time.Time) TimelineEntry {
	if details == "" {
		details = "Application status updated to " + string(status)
	}
	return TimelineEntry{
		Action:      "Status changed to " + string(status),
		PerformedBy: actorID,
		Timestamp:   at,
		Details:     details,
	}
}

func InterviewScheduledEntry(actorID string, scheduledAt, at time.Time) TimelineEntry {
	return TimelineEntry{
		Action:      "Interview scheduled",
		PerformedBy: actorID,
		Timestamp:   at,
		Details:     "Interview scheduled for " + scheduledAt.UTC().Format(time.RFC3339),
	}
}

func WithdrawnEntry(candidateID string, at time.Time) TimelineEntry {
	return StatusChangedEntry(StatusWithdrawn, candidateID, "Application withdrawn by candidate", at)
}
