package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/PabloGalante/axiomqa/internal/domain"
	"github.com/PabloGalante/axiomqa/internal/observability"
)

const (
	azureScope             = "https://cognitiveservices.azure.com/.default"
	defaultAzureAPIVersion = "2024-06-01"

	// Bounds non-streaming response bodies.
	maxResponseSize = 10 * 1024 * 1024
)

// AzureConfig configures the Azure OpenAI chat completions deployment.
// Exactly one of APIKey or TokenSource authenticates requests.
type AzureConfig struct {
	Endpoint   string
	Deployment string
	APIVersion string

	APIKey      string
	TokenSource oauth2.TokenSource

	HTTPClient *http.Client

	// RequestsPerSecond paces outgoing requests; zero disables pacing.
	RequestsPerSecond float64
	Retry             RetryConfig

	Temperature float32
	MaxTokens   int

	Logger *slog.Logger
}

// AzureClientCredentials returns an Entra ID token source for a service
// principal, scoped to Cognitive Services.
func AzureClientCredentials(ctx context.Context, tenantID, clientID, clientSecret string) oauth2.TokenSource {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     "https://login.microsoftonline.com/" + url.PathEscape(tenantID) + "/oauth2/v2.0/token",
		Scopes:       []string{azureScope},
	}
	return cc.TokenSource(ctx)
}

// AzureOpenAIClient is a domain.ChatCapability over the Azure OpenAI chat
// completions REST API.
type AzureOpenAIClient struct {
	url         string
	apiKey      string
	tokens      oauth2.TokenSource
	httpClient  *http.Client
	limiter     *rate.Limiter
	retry       RetryConfig
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

func NewAzureOpenAIClient(cfg AzureConfig) (*AzureOpenAIClient, error) {
	endpoint, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil || (endpoint.Scheme != "http" && endpoint.Scheme != "https") || endpoint.Host == "" {
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("azure: invalid endpoint %q", cfg.Endpoint), domain.ErrConfiguration),
			"set AXIOMQA_AZURE_ENDPOINT to https://<resource>.openai.azure.com")
	}
	if cfg.Deployment == "" {
		return nil, errors.WithHint(
			errors.Mark(errors.New("azure: deployment is required"), domain.ErrConfiguration),
			"set AXIOMQA_AZURE_DEPLOYMENT")
	}
	if cfg.APIKey == "" && cfg.TokenSource == nil {
		return nil, errors.WithHint(
			errors.Mark(errors.New("azure: an API key or a token source is required"), domain.ErrConfiguration),
			"set AXIOMQA_AZURE_API_KEY or the AXIOMQA_AZURE_TENANT_ID/CLIENT_ID/CLIENT_SECRET triple")
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAzureAPIVersion
	}
	q := url.Values{"api-version": []string{apiVersion}}
	endpoint.Path += "/openai/deployments/" + url.PathEscape(cfg.Deployment) + "/chat/completions"
	endpoint.RawQuery = q.Encode()

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &AzureOpenAIClient{
		url:         endpoint.String(),
		apiKey:      cfg.APIKey,
		tokens:      cfg.TokenSource,
		httpClient:  cfg.HTTPClient,
		limiter:     rate.NewLimiter(limit, 1),
		retry:       cfg.Retry,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
	if c.tokens != nil {
		c.tokens = oauth2.ReuseTokenSource(nil, c.tokens)
	}
	if c.httpClient == nil {
		// No overall timeout: streams may legitimately run for minutes.
		c.httpClient = &http.Client{Transport: http.DefaultTransport}
	}
	if c.retry.MaxAttempts == 0 {
		c.retry = DefaultRetryConfig()
	}
	if c.temperature == 0 {
		c.temperature = 0.2
	}
	if c.maxTokens == 0 {
		c.maxTokens = 4096
	}
	if c.logger == nil {
		c.logger = observability.WithFields("provider", "azure_openai")
	}
	return c, nil
}

func (c *AzureOpenAIClient) CreateAgent(_ context.Context, instructions string) (domain.Agent, error) {
	return &azureAgent{client: c, instructions: instructions}, nil
}

type azureAgent struct {
	client       *AzureOpenAIClient
	instructions string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (a *azureAgent) body(prompt string, stream bool) ([]byte, error) {
	p := Prompt{System: a.instructions, User: prompt}
	req := chatRequest{
		Temperature: a.client.temperature,
		MaxTokens:   a.client.maxTokens,
		Stream:      stream,
	}
	for _, m := range p.Messages() {
		req.Messages = append(req.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return json.Marshal(req)
}

func (a *azureAgent) Run(ctx context.Context, prompt string) (*domain.AgentResponse, error) {
	body, err := a.body(prompt, false)
	if err != nil {
		return nil, errors.Wrap(err, "encoding chat request")
	}

	start := time.Now()
	resp, err := a.client.open(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "reading chat response")
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decoding chat response")
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return nil, errors.New("azure returned empty content")
	}

	a.client.logger.Debug("chat completion finished", "duration", time.Since(start))
	return &domain.AgentResponse{Text: out.Choices[0].Message.Content}, nil
}

// RunStream yields the content deltas of a server-sent event stream. The
// response body is closed when the stream ends or the consumer stops.
func (a *azureAgent) RunStream(ctx context.Context, prompt string) iter.Seq2[domain.Delta, error] {
	return func(yield func(domain.Delta, error) bool) {
		body, err := a.body(prompt, true)
		if err != nil {
			yield(domain.Delta{}, errors.Wrap(err, "encoding chat request"))
			return
		}

		resp, err := a.client.open(ctx, body)
		if err != nil {
			yield(domain.Delta{}, err)
			return
		}
		defer resp.Body.Close()

		for data, err := range sseData(resp.Body) {
			if err != nil {
				yield(domain.Delta{}, errors.Wrap(err, "reading event stream"))
				return
			}
			if data == "[DONE]" {
				return
			}

			var ev chatResponse
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				yield(domain.Delta{}, errors.Wrap(err, "decoding stream event"))
				return
			}
			// Content filter and role-only events carry no choices or no content.
			if len(ev.Choices) == 0 || ev.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(domain.Delta{Text: ev.Choices[0].Delta.Content}, nil) {
				return
			}
		}
	}
}

// open sends the request, retrying transient failures, and returns a 200
// response whose body the caller must close.
func (c *AzureOpenAIClient) open(ctx context.Context, body []byte) (*http.Response, error) {
	return withRetry(ctx, c.retry, c.logger, func() (*http.Response, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fatal(errors.Wrap(err, "waiting for rate limiter"))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, fatal(errors.Wrap(err, "creating request"))
		}
		req.Header.Set("Content-Type", "application/json")
		if err := c.authorize(req); err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fatal(errors.Wrap(err, "sending request"))
			}
			return nil, transient(errors.Wrap(err, "sending request"))
		}
		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
			return nil, classifyStatus(resp.StatusCode, raw)
		}
		return resp, nil
	})
}

func (c *AzureOpenAIClient) authorize(req *http.Request) error {
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
		return nil
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return fatal(errors.Wrap(err, "acquiring access token"))
	}
	tok.SetAuthHeader(req)
	return nil
}

// sseData yields the payload of each "data:" field of a server-sent event
// stream. Multi-line data fields are joined with "\n".
func sseData(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var data []string
		for sc.Scan() {
			line := sc.Text()
			switch {
			case line == "":
				if len(data) == 0 {
					continue
				}
				payload := strings.Join(data, "\n")
				data = data[:0]
				if !yield(payload, nil) {
					return
				}
			case strings.HasPrefix(line, "data:"):
				data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			}
			// Comments, event names and ids are not used by the chat API.
		}
		if err := sc.Err(); err != nil {
			yield("", err)
			return
		}
		if len(data) > 0 {
			yield(strings.Join(data, "\n"), nil)
		}
	}
}
