package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"account-assistant/internal/integrations/webhook"
)

func TestNewSession_ValidatesDependencies(t *testing.T) {
	_, err := NewSession(nil, SessionConfig{DefaultAccount: "0001"})
	require.Error(t, err)

	_, err = NewSession(&mockWebhook{}, SessionConfig{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "default account")

	_, err = NewSession(&mockWebhook{}, SessionConfig{Accounts: []string{"0001"}, DefaultAccount: "9999"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not in the account list")
}

func TestNewSession_Defaults(t *testing.T) {
	s, err := NewSession(&mockWebhook{}, SessionConfig{Accounts: []string{" 0002 ", "", "0003", "0002"}})
	require.NoError(t, err)
	require.Equal(t, "0002", s.Account())
	require.Equal(t, []string{"0002", "0003"}, s.Accounts())
	require.Equal(t, defaultRequestTimeout, s.timeout)

	entries := s.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, greetingText, entries[0].Text)
	require.False(t, entries[0].FromUser)
	require.NotEmpty(t, entries[0].ID)
}

func TestSelectAccount_FixedList(t *testing.T) {
	s := newTestSession(t, &mockWebhook{})

	require.NoError(t, s.SelectAccount("0003"))
	require.Equal(t, "0003", s.Account())

	err := s.SelectAccount("4242")
	expectUsecaseError(t, err, ErrorInvalidInput, "unknown_account")
	require.Equal(t, "0003", s.Account())

	err = s.SelectAccount(" ")
	expectUsecaseError(t, err, ErrorInvalidInput, "empty_account")
}

func TestSelectAccount_FreeForm(t *testing.T) {
	s, err := NewSession(&mockWebhook{}, SessionConfig{DefaultAccount: "0001", Logger: discardLogger()})
	require.NoError(t, err)
	require.Nil(t, s.Accounts())

	require.NoError(t, s.SelectAccount("ACC-77"))
	require.Equal(t, "ACC-77", s.Account())

	err = s.SelectAccount("12345678901")
	expectUsecaseError(t, err, ErrorInvalidInput, "account_too_long")
}

func TestClear_AlwaysLeavesSingleEntry(t *testing.T) {
	s := newTestSession(t, &mockWebhook{answer: webhook.Answer{Answer: "ok"}})
	s.Clear()
	require.Len(t, s.Entries(), 1)

	for i := 0; i < 4; i++ {
		_, err := s.Ask(context.Background(), "question")
		require.NoError(t, err)
	}
	require.Len(t, s.Entries(), 9)

	s.Clear()
	entries := s.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, clearedText, entries[0].Text)
	require.False(t, entries[0].IsError)
}

func TestClear_WhilePendingKeepsLateReply(t *testing.T) {
	s := newTestSession(t, &mockWebhook{answer: webhook.Answer{Answer: "late"}})
	p, err := s.BeginAsk("q")
	require.NoError(t, err)

	s.Clear()
	require.Len(t, s.Entries(), 1)

	p.Resolve(context.Background())
	entries := s.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "late", entries[1].Text)
}

func TestQuickActions(t *testing.T) {
	s := newTestSession(t, &mockWebhook{answer: webhook.Answer{Answer: "ok"}})

	actions := s.QuickActions()
	require.Len(t, actions, 4)
	require.Equal(t, "What is my current account balance?", actions[0].Query)
	require.True(t, actions[3].OpensReport)
	require.True(t, s.ShowQuickActions())

	p, err := s.BeginAsk(actions[0].Query)
	require.NoError(t, err)
	require.False(t, s.ShowQuickActions(), "hidden while a reply is pending")

	p.Resolve(context.Background())
	require.False(t, s.ShowQuickActions(), "hidden once the conversation has started")

	s.Clear()
	require.True(t, s.ShowQuickActions())
}
