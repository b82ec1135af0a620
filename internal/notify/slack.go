package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// SlackAPI is the subset of *slack.Client used by SlackNotifier.
type SlackAPI interface {
	GetUserByEmailContext(ctx context.Context, email string) (*slack.User, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier sends reminders as Slack direct messages. The employee
// address is resolved to a Slack user by e-mail.
//
// Required bot token scopes: users:read.email, chat:write.
type SlackNotifier struct {
	api SlackAPI
}

// NewSlackNotifier creates a notifier backed by the Slack Web API.
func NewSlackNotifier(token string, opts ...slack.Option) (*SlackNotifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("slack: bot token is required")
	}
	return &SlackNotifier{api: slack.New(token, opts...)}, nil
}

// NewSlackNotifierWithAPI creates a notifier around an existing client.
func NewSlackNotifierWithAPI(api SlackAPI) *SlackNotifier {
	return &SlackNotifier{api: api}
}

// Send posts message to the Slack user registered with address.
func (n *SlackNotifier) Send(ctx context.Context, address, message string) error {
	user, err := n.api.GetUserByEmailContext(ctx, address)
	if err != nil {
		return wrap(address, fmt.Errorf("lookup slack user: %w", err))
	}
	if user == nil || user.ID == "" {
		return wrap(address, errors.New("no slack user for address"))
	}
	if _, _, err := n.api.PostMessageContext(ctx, user.ID, slack.MsgOptionText(message, false)); err != nil {
		return wrap(address, fmt.Errorf("post slack message: %w", err))
	}
	return nil
}
