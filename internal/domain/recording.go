package domain

type RecordingID string

// RecordingRecord is the durable document written for one saved capture.
// Created once, immutable afterwards; outlives the session it references.
// JSON keys match the on-disk document shape clients already read.
type RecordingRecord struct {
	ID            RecordingID      `json:"-"`
	AudioData     string           `json:"audio_data"`
	AppliedParams ProcessingParams `json:"processing_parameters"`
	Timestamp     string           `json:"timestamp"`
	Duration      float64          `json:"duration"`
	SessionID     SessionID        `json:"webrtc_session_id,omitempty"`
}

// RecordingSummary is the listing view, without the audio payload.
type RecordingSummary struct {
	ID            RecordingID      `json:"filename"`
	Timestamp     string           `json:"timestamp"`
	Duration      float64          `json:"duration"`
	AppliedParams ProcessingParams `json:"processing_parameters"`
}
