package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only client payload: a keepalive ping.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError            Event = "error"
	EventPong             Event = "pong"
	EventTick             Event = "tick"
	EventTimeWarning      Event = "time_warning"
	EventQuestionChanged  Event = "question_changed"
	EventSessionCompleted Event = "session_completed"
	EventSaveDegraded     Event = "save_degraded"
)

// TickEvent carries the session clock once per second.
type TickEvent struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// TimeWarningEvent fires when a warning threshold is crossed. Scope is
// "session" or "question"; a question-scope threshold of zero means the
// question's own time limit expired.
type TimeWarningEvent struct {
	Event            Event  `json:"event"`
	Scope            string `json:"scope"`
	ThresholdSeconds int    `json:"threshold_seconds"`
}

// QuestionChangedEvent fires after navigation settles on a new question.
type QuestionChangedEvent struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

// SessionCompletedEvent fires exactly once per attempt, at finalization.
type SessionCompletedEvent struct {
	Event     Event  `json:"event"`
	AttemptID string `json:"attempt_id"`
	Score     int    `json:"score"`
	Total     int    `json:"total"`
}

// SaveDegradedEvent warns that progress may not survive a reload.
type SaveDegradedEvent struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
