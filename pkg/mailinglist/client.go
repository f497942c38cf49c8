// Package mailinglist wraps a Mailchimp-compatible v3.0 list API. It carries
// no enrollment logic; callers decide when to subscribe.
package mailinglist

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
)

const (
	// DefaultTimeout is the default request timeout
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize bounds error body reads (64KB)
	MaxResponseSize = 64 * 1024
)

// Client is a stateless mailing list API client
type Client struct {
	client  *http.Client
	logger  ectologger.Logger
	baseURL string
	apiKey  string
	listID  string
}

// NewClient creates a mailing list client. The API key carries the datacenter
// region as its suffix ("<secret>-<region>") which selects the base URL.
func NewClient(apiKey, listID string, logger ectologger.Logger) (*Client, error) {
	idx := strings.LastIndex(apiKey, "-")
	if idx < 0 || idx == len(apiKey)-1 {
		return nil, errors.New("mailing list api key must end with a datacenter region")
	}
	region := apiKey[idx+1:]

	return &Client{
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  logger,
		baseURL: fmt.Sprintf("https://%s.api.mailchimp.com/3.0", region),
		apiKey:  apiKey,
		listID:  listID,
	}, nil
}

// MemberID returns the list member id for an email: the hex MD5 of the
// lower-cased address.
func MemberID(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

type memberRequest struct {
	EmailAddress string            `json:"email_address,omitempty"`
	StatusIfNew  string            `json:"status_if_new,omitempty"`
	Status       string            `json:"status,omitempty"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
}

// Subscribe upserts the member with subscribed status. Existing members keep
// their current status.
func (c *Client) Subscribe(ctx context.Context, email, firstName, lastName string) error {
	log := c.logger.WithContext(ctx).WithFields(map[string]any{
		"method":  "Subscribe",
		"list_id": c.listID,
	})

	body := memberRequest{
		EmailAddress: email,
		StatusIfNew:  "subscribed",
		MergeFields: map[string]string{
			"FNAME": firstName,
			"LNAME": lastName,
		},
	}

	if err := c.putMember(ctx, http.MethodPut, email, body); err != nil {
		log.WithError(err).Error("Failed to subscribe member")
		return err
	}

	log.Info("Subscribed member")
	return nil
}

// Unsubscribe marks the member unsubscribed
func (c *Client) Unsubscribe(ctx context.Context, email string) error {
	log := c.logger.WithContext(ctx).WithFields(map[string]any{
		"method":  "Unsubscribe",
		"list_id": c.listID,
	})

	if err := c.putMember(ctx, http.MethodPatch, email, memberRequest{Status: "unsubscribed"}); err != nil {
		log.WithError(err).Error("Failed to unsubscribe member")
		return err
	}

	log.Info("Unsubscribed member")
	return nil
}

func (c *Client) putMember(ctx context.Context, method, email string, body memberRequest) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to encode member request")
	}

	url := fmt.Sprintf("%s/lists/%s/members/%s", c.baseURL, c.listID, MemberID(email))
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "failed to build member request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("anystring", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "mailing list request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return fmt.Errorf("mailing list api returned %d: %s", resp.StatusCode, string(detail))
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
	return nil
}
