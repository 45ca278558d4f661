package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/kibanda-labs/cafeteria-pos/pkg/config"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

const idempotencyHeader = "X-Idempotency-Key"

var (
	errBaseURLRequired = errors.New("backend base url is required")
	errLoggerRequired  = errors.New("backend logger is required")
)

// Client talks to the remote cafeteria inventory service with centralized
// logging, timeouts, and error mapping.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewClient validates the configuration and builds the backend wrapper.
func NewClient(cfg config.BackendConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing backend base url: %w", err)
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logg,
	}, nil
}

// Item is one catalog entry as the backend reports it.
type Item struct {
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Threshold int     `json:"threshold"`
	Category  string  `json:"category"`
	Available bool    `json:"available"`
}

// ItemsResponse is the full menu listing.
type ItemsResponse struct {
	Items      map[string]Item `json:"items"`
	Categories []string        `json:"categories"`
	TotalItems int             `json:"totalItems"`
}

// SaleRequest submits one cart line for sale.
type SaleRequest struct {
	Item  string  `json:"item"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
	Table string  `json:"table,omitempty"`
}

// SaleResult is the backend's confirmation for one line.
type SaleResult struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Item       string  `json:"item"`
	Quantity   int     `json:"quantity"`
	Amount     float64 `json:"amount"`
	Remaining  int     `json:"remaining"`
	Timestamp  string  `json:"timestamp"`
	Alert      string  `json:"alert,omitempty"`
	AlertLevel string  `json:"alertLevel,omitempty"`
}

// DailyTotals summarizes today's revenue.
type DailyTotals struct {
	DailyTotal          float64 `json:"dailyTotal"`
	TodayRevenue        float64 `json:"todayRevenue"`
	TodaySales          int     `json:"todaySales"`
	Date                string  `json:"date"`
	MostPopularItem     string  `json:"mostPopularItem"`
	MostPopularQuantity int     `json:"mostPopularQuantity"`
	AverageSale         float64 `json:"averageSale"`
}

type errorBody struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// ListItems fetches the full item listing.
func (c *Client) ListItems(ctx context.Context) (*ItemsResponse, error) {
	c.log(ctx, "request", "list_items", nil)

	var out ItemsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/items", nil, "", &out); err != nil {
		c.log(ctx, "error", "list_items", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "list_items", map[string]any{"total_items": len(out.Items)})
	return &out, nil
}

// SubmitSale posts one sale line. Every submission carries a fresh idempotency
// key; the client never retries on its own because a blind resubmission would
// double-decrement stock.
func (c *Client) SubmitSale(ctx context.Context, req SaleRequest) (*SaleResult, error) {
	key := newIdempotencyKey("sale")
	c.log(ctx, "request", "submit_sale", map[string]any{
		"item":            req.Item,
		"qty":             req.Qty,
		"idempotency_key": key,
	})

	var out SaleResult
	if err := c.doJSON(ctx, http.MethodPost, "/sale", req, key, &out); err != nil {
		c.log(ctx, "error", "submit_sale", map[string]any{"item": req.Item, "error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "submit_sale", map[string]any{
		"item":      out.Item,
		"remaining": out.Remaining,
	})
	return &out, nil
}

// DailyTotals fetches today's revenue summary.
func (c *Client) DailyTotals(ctx context.Context) (*DailyTotals, error) {
	c.log(ctx, "request", "daily_totals", nil)

	var out DailyTotals
	if err := c.doJSON(ctx, http.MethodGet, "/dailyTotals", nil, "", &out); err != nil {
		c.log(ctx, "error", "daily_totals", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "daily_totals", map[string]any{"daily_total": out.DailyTotal})
	return &out, nil
}

// ExportReport pulls the end-of-day report body.
func (c *Client) ExportReport(ctx context.Context) (string, error) {
	c.log(ctx, "request", "export_report", nil)

	body, err := c.doRaw(ctx, http.MethodGet, "/exportReport")
	if err != nil {
		c.log(ctx, "error", "export_report", map[string]any{"error": err.Error()})
		return "", err
	}

	c.log(ctx, "response", "export_report", map[string]any{"bytes": len(body)})
	return string(body), nil
}

// Ping checks the backend health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRaw(ctx, http.MethodGet, "/health")
	return err
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, idempotencyKey string, dest any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode backend request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build backend request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(idempotencyHeader, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("backend %s %s", method, path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read backend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp.StatusCode, raw, path)
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build backend request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("backend %s %s", method, path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read backend response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.mapError(resp.StatusCode, raw, path)
	}
	return raw, nil
}

func (c *Client) mapError(status int, raw []byte, path string) error {
	message := fmt.Sprintf("backend returned status %d", status)
	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != "" {
		message = parsed.Error
	}
	return pkgerrors.New(codeForStatus(status), message).
		WithDetails(map[string]any{"path": path, "http_status": status})
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("backend %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("backend %s", phase))
	}
}

func newIdempotencyKey(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
