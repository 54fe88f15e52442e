package notify

import "context"

// Message is a workflow notification formatted for a chat transport.
type Message struct {
	Title    string
	Text     string
	Type     string // event type, e.g. "dept_task.submitted"
	Severity string // "info", "warning", "error", "success"
}

// Transport delivers messages to one chat platform. Implementations are
// send-only; delivery guarantees belong to the platform, not to this core.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string

	// Send delivers a message. Errors are logged by the dispatcher, never
	// propagated into the workflow.
	Send(ctx context.Context, msg Message) error
}

// SeverityColor maps a message severity to a sidebar color hint shared by
// the chat transports.
func SeverityColor(severity string) string {
	switch severity {
	case "success":
		return "#36a64f"
	case "warning":
		return "#daa038"
	case "error":
		return "#cc0000"
	default:
		return "#439fe0"
	}
}
