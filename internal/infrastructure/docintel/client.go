package docintel

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docvoice/docvoice/internal/core/domain"
	"github.com/docvoice/docvoice/internal/infrastructure/resilience"
)

// Client talks to the document intelligence service. One instance is
// shared by the pipeline, auth, and history adapters.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// The executor owns the per-call deadline; the transport timeout
		// is only a safety net for response body reads.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		executor:   executor,
	}
}

// Welcome fetches the service greeting from the root endpoint.
func (c *Client) Welcome(ctx context.Context) (string, error) {
	var response struct {
		Message string `json:"message"`
	}
	err := c.execute(ctx, "welcome", func(ctx context.Context) error {
		return c.getJSON(ctx, "/", &response, "welcome")
	})
	if err != nil {
		return "", err
	}
	return response.Message, nil
}

// Extract uploads the raw file and returns the text the service pulled
// out of it.
func (c *Client) Extract(ctx context.Context, filename string, body io.Reader) (string, error) {
	var response struct {
		Filename      string `json:"filename"`
		ExtractedText string `json:"extracted_text"`
	}
	err := c.execute(ctx, "extract", func(ctx context.Context) error {
		return c.postMultipart(ctx, "/upload_pdf/", filename, body, &response, "extract")
	})
	if err != nil {
		return "", err
	}
	return response.ExtractedText, nil
}

// Summarize posts extracted text. A non-empty userID asks the service to
// persist the result server-side.
func (c *Client) Summarize(ctx context.Context, text, userID string) (string, error) {
	request := map[string]any{"text": text}
	if userID != "" {
		request["user_id"] = userID
	}

	var response struct {
		Summary string `json:"summary"`
	}
	err := c.execute(ctx, "summarize", func(ctx context.Context) error {
		return c.postJSON(ctx, "/summarize/", request, &response, "summarize")
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Summary), nil
}

func (c *Client) Translate(ctx context.Context, text, langCode string) (string, error) {
	request := map[string]any{
		"text":        text,
		"target_lang": langCode,
	}

	var response struct {
		TranslatedText string `json:"translated_text"`
	}
	err := c.execute(ctx, "translate", func(ctx context.Context) error {
		return c.postJSON(ctx, "/translate/", request, &response, "translate")
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.TranslatedText), nil
}

func (c *Client) Ask(ctx context.Context, question, contextText string) (string, error) {
	request := map[string]any{
		"question": question,
		"context":  contextText,
	}

	var response struct {
		Answer string `json:"answer"`
	}
	err := c.execute(ctx, "ask", func(ctx context.Context) error {
		return c.postJSON(ctx, "/ask_question/", request, &response, "ask")
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Answer), nil
}

// Auth adapts the service's identity endpoints.
type Auth struct {
	client *Client
}

func NewAuth(client *Client) *Auth {
	return &Auth{client: client}
}

func (a *Auth) Register(ctx context.Context, username, password string) error {
	request := map[string]any{
		"username": username,
		"password": password,
	}
	var response struct {
		UserID string `json:"user_id"`
	}
	return a.client.execute(ctx, "register", func(ctx context.Context) error {
		return a.client.postJSON(ctx, "/auth/register", request, &response, "register")
	})
}

func (a *Auth) Login(ctx context.Context, username, password string) (domain.Session, error) {
	request := map[string]any{
		"username": username,
		"password": password,
	}
	var response struct {
		UserID      string `json:"user_id"`
		DisplayName string `json:"display_name"`
		Token       string `json:"token"`
	}
	err := a.client.execute(ctx, "login", func(ctx context.Context) error {
		return a.client.postJSON(ctx, "/auth/login", request, &response, "login")
	})
	if err != nil {
		return domain.Session{}, err
	}

	displayName := response.DisplayName
	if displayName == "" {
		displayName = username
	}
	return domain.Session{
		UserID:      response.UserID,
		DisplayName: displayName,
		Token:       response.Token,
	}, nil
}

// History adapts the past-summaries listing endpoint.
type History struct {
	client *Client
}

func NewHistory(client *Client) *History {
	return &History{client: client}
}

func (h *History) List(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	var response struct {
		Summaries []struct {
			ID        string    `json:"id"`
			Summary   string    `json:"summary"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"summaries"`
	}
	err := h.client.execute(ctx, "history", func(ctx context.Context) error {
		return h.client.getJSON(ctx, "/history/"+userID, &response, "history")
	})
	if err != nil {
		return nil, err
	}

	// Server order is authoritative; no client-side re-sort.
	entries := make([]domain.HistoryEntry, 0, len(response.Summaries))
	for _, s := range response.Summaries {
		entries = append(entries, domain.HistoryEntry{
			ID:        s.ID,
			Summary:   s.Summary,
			CreatedAt: s.CreatedAt,
		})
	}
	return entries, nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return mapServiceError(operation, fn(ctx))
	}
	err := c.executor.Execute(ctx, operation, fn, countsAgainstBreaker)
	return mapServiceError(operation, err)
}
