package slack

import (
	"context"
	"errors"
	"sync"
	"testing"

	slackapi "github.com/slack-go/slack"

	"github.com/cascadehq/cascade/internal/notify"
)

type mockClient struct {
	mu      sync.Mutex
	posted  []postedMessage
	postErr error
}

type postedMessage struct {
	channelID string
	options   []slackapi.MsgOption
}

func (m *mockClient) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return "", "", m.postErr
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, options: options})
	return channelID, "1234567890.123456", nil
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{ChannelID: "C1"}); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := New(Opts{BotToken: "xoxb-x"}); err == nil {
		t.Error("expected error for missing channel")
	}
	if _, err := New(Opts{BotToken: "xoxb-x", ChannelID: "C1"}); err != nil {
		t.Errorf("New: %v", err)
	}
}

func TestSend(t *testing.T) {
	mock := &mockClient{}
	transport, err := New(Opts{ChannelID: "C_WORKFLOW", Client: mock})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = transport.Send(context.Background(), notify.Message{
		Title: "Department task submitted", Text: "Task X is ready for review",
		Type: "dept_task.submitted", Severity: "info",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(mock.posted) != 1 {
		t.Fatalf("posted = %d, want 1", len(mock.posted))
	}
	if mock.posted[0].channelID != "C_WORKFLOW" {
		t.Errorf("channel = %q", mock.posted[0].channelID)
	}
}

func TestSend_Error(t *testing.T) {
	mock := &mockClient{postErr: errors.New("channel_not_found")}
	transport, err := New(Opts{ChannelID: "C1", Client: mock})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := transport.Send(context.Background(), notify.Message{Title: "t"}); err == nil {
		t.Error("expected error from failing client")
	}
}

func TestName(t *testing.T) {
	transport, _ := New(Opts{ChannelID: "C1", Client: &mockClient{}})
	if transport.Name() != "slack" {
		t.Errorf("Name = %q", transport.Name())
	}
}
