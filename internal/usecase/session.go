package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"account-assistant/internal/domain"
	"account-assistant/internal/integrations/webhook"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxAccountIDLength    = 10
	maxQuestionLength     = 500
	quickActionMaxEntries = 2
)

type WebhookClient interface {
	AskQuestion(ctx context.Context, in webhook.AskRequest) (webhook.Answer, error)
	SendReport(ctx context.Context, in webhook.ReportRequest) (webhook.ReportReply, error)
}

type SessionConfig struct {
	// Accounts is the fixed list offered by the account picker. When empty,
	// any short non-empty account ID is accepted.
	Accounts       []string
	DefaultAccount string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Session holds one user's conversation and the flags that gate outbound
// requests. It is safe for concurrent use.
type Session struct {
	client   WebhookClient
	accounts []string
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu            sync.Mutex
	conversation  *domain.Conversation
	accountID     string
	pending       bool
	reportPending bool
}

func NewSession(client WebhookClient, cfg SessionConfig) (*Session, error) {
	if client == nil {
		return nil, errors.New("usecase: webhook client must not be nil")
	}
	accounts := make([]string, 0, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		if a = strings.TrimSpace(a); a != "" && !slices.Contains(accounts, a) {
			accounts = append(accounts, a)
		}
	}
	account := strings.TrimSpace(cfg.DefaultAccount)
	if account == "" && len(accounts) > 0 {
		account = accounts[0]
	}
	if account == "" {
		return nil, errors.New("usecase: default account must not be empty")
	}
	if len(accounts) > 0 && !slices.Contains(accounts, account) {
		return nil, errors.New("usecase: default account is not in the account list")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		client:    client,
		accounts:  accounts,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
		accountID: account,
	}
	s.conversation = domain.NewConversation(s.botEntry(greetingText))
	return s, nil
}

// Entries returns the conversation in display order.
func (s *Session) Entries() []domain.ChatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation.Entries()
}

// Pending reports whether a question is awaiting its reply.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// ReportPending reports whether a problem report submission is in flight.
func (s *Session) ReportPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportPending
}

func (s *Session) Account() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountID
}

// Accounts returns the selectable account IDs; nil means free-form entry.
func (s *Session) Accounts() []string {
	return slices.Clone(s.accounts)
}

// SelectAccount changes the account used by subsequent requests. Requests
// already in flight keep the account they were sent with.
func (s *Session) SelectAccount(accountID string) error {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return newError(ErrorInvalidInput, "empty_account", nil)
	}
	if len(s.accounts) > 0 {
		if !slices.Contains(s.accounts, accountID) {
			return newError(ErrorInvalidInput, "unknown_account", nil)
		}
	} else if utf8.RuneCountInString(accountID) > maxAccountIDLength {
		return newError(ErrorInvalidInput, "account_too_long", nil)
	}

	s.mu.Lock()
	prev := s.accountID
	s.accountID = accountID
	s.mu.Unlock()

	if prev != accountID {
		s.logger.Info("account selected", "account", accountID, "previous", prev)
	}
	return nil
}

// Clear resets the conversation to a single greeting entry. A reply that is
// still in flight is appended after the greeting when it arrives.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := s.conversation.Len()
	s.conversation.Reset(s.botEntry(clearedText))
	s.logger.Info("conversation cleared", "dropped_entries", dropped)
}

func (s *Session) QuickActions() []QuickAction {
	return slices.Clone(quickActions)
}

// ShowQuickActions reports whether quick actions should be offered: only near
// the start of a conversation and while nothing is pending.
func (s *Session) ShowQuickActions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation.Len() <= quickActionMaxEntries && !s.pending
}

func (s *Session) botEntry(text string) domain.ChatEntry {
	return domain.ChatEntry{
		ID:        newUUID(),
		Text:      text,
		CreatedAt: s.now(),
	}
}

var newUUID = func() string {
	return uuid.NewString()
}
