package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"choreographer/pkg/platform/sentinel"
)

// DefaultPollTimeout bounds each upstream request.
const DefaultPollTimeout = 5 * time.Second

// Poller fetches transaction history and users from the bank services.
type Poller struct {
	client          *http.Client
	transactionsURL string
	usersURL        string
	accounts        []string
	users           []string
	tokens          TokenSource
	logger          *slog.Logger
}

// PollerConfig names the upstream services and what to poll.
type PollerConfig struct {
	TransactionsURL string
	UsersURL        string
	Accounts        []string
	Users           []string
}

// NewPoller builds a poller. A nil client gets DefaultPollTimeout.
func NewPoller(cfg PollerConfig, tokens TokenSource, client *http.Client, logger *slog.Logger) *Poller {
	if client == nil {
		client = &http.Client{Timeout: DefaultPollTimeout}
	}
	if tokens == nil {
		tokens = StaticToken(DemoToken)
	}
	return &Poller{
		client:          client,
		transactionsURL: strings.TrimRight(cfg.TransactionsURL, "/"),
		usersURL:        strings.TrimRight(cfg.UsersURL, "/"),
		accounts:        cfg.Accounts,
		users:           cfg.Users,
		tokens:          tokens,
		logger:          logger,
	}
}

// PollTransactions fetches every monitored account's history, tagging each
// record with its account. Failed accounts are logged and skipped; if no
// records come back at all the error wraps sentinel.ErrUnavailable.
func (p *Poller) PollTransactions(ctx context.Context) ([]ActivityRecord, error) {
	var all []ActivityRecord
	for _, account := range p.accounts {
		u := p.transactionsURL + "/" + url.PathEscape(account)
		var records []ActivityRecord
		if err := p.getJSON(ctx, u, true, &records); err != nil {
			p.logger.WarnContext(ctx, "poll account failed", "account", account, "error", err)
			continue
		}
		for i := range records {
			records[i].AccountID = account
		}
		all = append(all, records...)
		p.logger.DebugContext(ctx, "polled account", "account", account, "records", len(records))
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no transactions polled: %w", sentinel.ErrUnavailable)
	}
	return all, nil
}

// PollUsers fetches the monitored users. A user answering non-200 is
// skipped; a transport failure aborts the poll.
func (p *Poller) PollUsers(ctx context.Context) ([]User, error) {
	users := make([]User, 0, len(p.users))
	for _, id := range p.users {
		var u User
		err := p.getJSON(ctx, p.usersURL+"/users/"+url.PathEscape(id), false, &u)
		var se *statusError
		switch {
		case err == nil:
			users = append(users, u)
		case errors.As(err, &se):
			p.logger.WarnContext(ctx, "poll user failed", "user_id", id, "status", se.code)
		default:
			return nil, fmt.Errorf("poll user %s: %w", id, err)
		}
	}
	return users, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("HTTP %d", e.code) }

// getJSON issues an authenticated GET. With retryAnonymous, a 401 is retried
// once without credentials.
func (p *Poller) getJSON(ctx context.Context, u string, retryAnonymous bool, out any) error {
	resp, err := p.get(ctx, u, true)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && retryAnonymous {
		drain(resp)
		p.logger.InfoContext(ctx, "auth rejected, retrying without credentials", "url", u)
		if resp, err = p.get(ctx, u, false); err != nil {
			return err
		}
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unexpected response format: %w", err)
	}
	return nil
}

func (p *Poller) get(ctx context.Context, u string, auth bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		token, err := p.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return p.client.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
