package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultQRWorkers = 3
	DefaultQRRate    = 2.0

	errInvalidFormat = "invalid response format"
)

// QRRequest names the account to connect.
type QRRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// QRResult carries the base64 QR image or the reason there is none.
type QRResult struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Success bool   `json:"success"`
	QRCode  string `json:"qrCode,omitempty"`
	Error   string `json:"error,omitempty"`
}

type qrResponse struct {
	D       *string `json:"d"`
	Success bool    `json:"success"`
	QRCode  string  `json:"qrCode"`
	Error   string  `json:"error"`
}

type QRGenerator struct {
	url        string
	httpClient *http.Client
	workers    int
	limit      rate.Limit
	logger     *slog.Logger
}

// NewQRGenerator creates a generator that posts to url. ratePerSec bounds
// GenerateAll across all workers.
func NewQRGenerator(url string, timeout time.Duration, workers int, ratePerSec float64, logger *slog.Logger, opts ...Option) *QRGenerator {
	o := buildOptions(timeout, opts)
	if workers <= 0 {
		workers = DefaultQRWorkers
	}
	if ratePerSec <= 0 {
		ratePerSec = DefaultQRRate
	}
	return &QRGenerator{
		url:        url,
		httpClient: o.httpClient,
		workers:    workers,
		limit:      rate.Limit(ratePerSec),
		logger:     logger.With("component", "qr"),
	}
}

// Generate requests a QR code for one account. Failures are reported in the
// result.
func (g *QRGenerator) Generate(ctx context.Context, name, phone string) QRResult {
	res := QRResult{Name: name, Phone: phone}

	body, err := json.Marshal(QRRequest{Name: name, Phone: phone})
	if err != nil {
		res.Error = err.Error()
		return res
	}

	var resp qrResponse
	if err := postJSON(ctx, g.httpClient, g.url, body, &resp); err != nil {
		g.logger.Warn("qr generation failed", "name", name, "error", err)
		res.Error = fmt.Sprintf("qr generation failed: %v", err)
		return res
	}

	switch {
	case resp.D != nil && strings.HasPrefix(*resp.D, "data:image/"):
		_, data, found := strings.Cut(*resp.D, ",")
		if !found || data == "" {
			res.Error = errInvalidFormat
			return res
		}
		res.Success = true
		res.QRCode = data
	case resp.Success && resp.QRCode != "":
		res.Success = true
		res.QRCode = resp.QRCode
	case resp.Error != "":
		res.Error = resp.Error
	default:
		res.Error = errInvalidFormat
	}
	return res
}

// GenerateAll requests QR codes for reqs with a bounded worker pool. Results
// are in the order of reqs. Requests not started before ctx ends carry the
// limiter error.
func (g *QRGenerator) GenerateAll(ctx context.Context, reqs []QRRequest) []QRResult {
	results := make([]QRResult, len(reqs))
	limiter := rate.NewLimiter(g.limit, 1)

	type job struct {
		index int
		req   QRRequest
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for range min(g.workers, max(1, len(reqs))) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = g.Generate(ctx, j.req.Name, j.req.Phone)
			}
		}()
	}

	next := 0
	var waitErr error
	for ; next < len(reqs); next++ {
		if waitErr = limiter.Wait(ctx); waitErr != nil {
			break
		}
		jobs <- job{index: next, req: reqs[next]}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(reqs); i++ {
		results[i] = QRResult{Name: reqs[i].Name, Phone: reqs[i].Phone, Error: waitErr.Error()}
	}

	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
		}
	}
	g.logger.Info("bulk qr generation finished", "requested", len(reqs), "succeeded", ok)
	return results
}

// ParseAccountList reads "name,phone" lines. Blank lines are skipped, a
// missing name becomes "Account N" and lines without a phone are dropped.
func ParseAccountList(text string) []QRRequest {
	var out []QRRequest
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n++
		name, phone, _ := strings.Cut(line, ",")
		name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
		if phone == "" {
			continue
		}
		if name == "" {
			name = fmt.Sprintf("Account %d", n)
		}
		out = append(out, QRRequest{Name: name, Phone: phone})
	}
	return out
}
