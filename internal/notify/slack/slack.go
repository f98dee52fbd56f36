// Package slack delivers notifications to a Slack channel.
package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/planar-app/planar/internal/notify"
)

// SlackAPI abstracts the subset of the Slack client used by Sink. This
// allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// Sink posts notification text to a fixed Slack channel.
type Sink struct {
	api       SlackAPI
	channelID string
}

var _ notify.Sink = (*Sink)(nil)

// New creates a Sink posting to the given channel.
func New(api SlackAPI, channelID string) *Sink {
	return &Sink{api: api, channelID: channelID}
}

// NewFromToken creates a Sink with a real Slack client.
func NewFromToken(token, channelID string) *Sink {
	return New(slacklib.New(token), channelID)
}

// Send posts the text as a plain channel message.
func (s *Sink) Send(ctx context.Context, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, s.channelID, slacklib.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack.Sink.Send: %w", err)
	}

	return nil
}

// Platform returns the sink's platform identifier.
func (s *Sink) Platform() string {
	return "slack"
}
