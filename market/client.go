package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"

	"phocaforme/ingest"
	"phocaforme/model"
)

var ErrNotFound = errors.New("listing not found")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

type Client interface {
	GetListing(ctx context.Context, id model.ID) (*model.Listing, error)
	CreateListing(ctx context.Context, draft model.Draft, photos []ingest.Source) (model.ID, error)
	DeleteListing(ctx context.Context, id model.ID) error
	BumpListing(ctx context.Context, id model.ID) error
	OpenChat(ctx context.Context, id model.ID) (model.ChatRoom, error)
}

type Option func(*client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *client) { c.http.Timeout = d }
}

type client struct {
	base  string
	token string
	http  *http.Client
	log   logrus.FieldLogger
}

func NewClient(baseURL string, opts ...Option) (Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &client{
		base: baseURL,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  logrus.WithField("component", "market"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client) GetListing(ctx context.Context, id model.ID) (*model.Listing, error) {
	if id == "" {
		return nil, fmt.Errorf("listing id is required")
	}
	resp, err := c.do(ctx, http.MethodGet, "barter/"+url.PathEscape(id.String()), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var listing model.Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing %s: %w", id, err)
	}
	if listing.ID == "" {
		listing.ID = id
	}
	return &listing, nil
}

func (c *client) CreateListing(ctx context.Context, draft model.Draft, photos []ingest.Source) (model.ID, error) {
	if len(photos) == 0 {
		return "", fmt.Errorf("at least one photo is required")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeListingForm(mw, draft, photos))
	}()

	resp, err := c.do(ctx, http.MethodPost, "barter", pr, mw.FormDataContentType())
	// Unblocks the writer goroutine if the request never consumed the body.
	pr.Close()
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read create response: %w", err)
	}
	var created struct {
		ID model.ID `json:"id"`
	}
	if len(body) > 0 && json.Unmarshal(body, &created) == nil && created.ID != "" {
		return created.ID, nil
	}
	// Some deployments answer with the bare id.
	var bare model.ID
	if json.Unmarshal(body, &bare) == nil {
		return bare, nil
	}
	return model.ID(strings.TrimSpace(string(body))), nil
}

func writeListingForm(mw *multipart.Writer, draft model.Draft, photos []ingest.Source) error {
	fields := [][2]string{
		{"title", draft.Title},
		{"content", encodeURIComponent(draft.Content)},
	}
	for _, m := range draft.OwnMembers {
		fields = append(fields, [2]string{"ownIdolMembers", strconv.FormatInt(m, 10)})
	}
	for _, m := range draft.TargetMembers {
		fields = append(fields, [2]string{"findIdolMembers", strconv.FormatInt(m, 10)})
	}
	fields = append(fields, [2]string{"cardType", draft.CardType})
	if draft.GroupID != 0 {
		fields = append(fields, [2]string{"groupId", strconv.FormatInt(draft.GroupID, 10)})
	}

	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}
	for _, src := range photos {
		if err := writePhoto(mw, src); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writePhoto(mw *multipart.Writer, src ingest.Source) error {
	rc, err := src.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read %s: %w", src.Name(), err)
	}
	head = head[:n]

	contentType := "application/octet-stream"
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename="%s"`, escapeQuotes(src.Name())))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part for %s: %w", src.Name(), err)
	}
	if _, err := part.Write(head); err != nil {
		return err
	}
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("failed to stream %s: %w", src.Name(), err)
	}
	return nil
}

var uriComponentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent matches the browser function of the same name, which
// the backend decodes content with: spaces become %20, not +.
func encodeURIComponent(s string) string {
	return uriComponentFixups.Replace(url.QueryEscape(s))
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (c *client) DeleteListing(ctx context.Context, id model.ID) error {
	if id == "" {
		return fmt.Errorf("listing id is required")
	}
	resp, err := c.do(ctx, http.MethodDelete, "barter/"+url.PathEscape(id.String()), nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *client) BumpListing(ctx context.Context, id model.ID) error {
	if id == "" {
		return fmt.Errorf("listing id is required")
	}
	resp, err := c.do(ctx, http.MethodPut, "barter/regen/"+url.PathEscape(id.String()), nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// OpenChat asks the backend for the chat room with the owner of listing id,
// creating it on first contact.
func (c *client) OpenChat(ctx context.Context, id model.ID) (model.ChatRoom, error) {
	if id == "" {
		return model.ChatRoom{}, fmt.Errorf("listing id is required")
	}
	resp, err := c.do(ctx, http.MethodPost, "chatRoom/"+url.PathEscape(id.String()), nil, "")
	if err != nil {
		return model.ChatRoom{}, err
	}
	defer resp.Body.Close()

	var room model.ChatRoom
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return model.ChatRoom{}, fmt.Errorf("failed to decode chat room for %s: %w", id, err)
	}
	if room.ID == "" {
		return model.ChatRoom{}, fmt.Errorf("chat room for %s: response has no chatRoomId", id)
	}
	return room, nil
}

// do sends the request and turns non-2xx answers into *StatusError. The
// caller owns the returned body.
func (c *client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	target := c.base + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "phocaforme/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log := c.log.WithFields(logrus.Fields{"method": method, "url": target, "request_id": requestID})
	log.Debug("sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", method, target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.WithField("status", resp.StatusCode).Debug("request failed")
		return nil, &StatusError{Method: method, URL: target, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return resp, nil
}
