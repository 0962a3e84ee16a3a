package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"artemis/internal/models"
	"artemis/internal/utils"
)

var (
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrNITNotFound         = errors.New("NIT not found in search results")
	ErrUpstream            = errors.New("search upstream failure")
)

var nitPattern = regexp.MustCompile(`(?i)NIT\s*[:.]?\s*([\d,.]+-\d+)`)

// maxSearchPage caps how much of the results page is scanned.
const maxSearchPage = 2 << 20

const searchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

type NITService interface {
	Search(ctx context.Context, companyName string) (*models.NITResult, error)
}

type nitService struct {
	searchURL string
	http      *http.Client
	log       *zap.Logger
}

func NewNITService(searchURL string, timeout time.Duration, log *zap.Logger) NITService {
	return &nitService{
		searchURL: searchURL,
		http:      &http.Client{Timeout: timeout},
		log:       log.Named("nit"),
	}
}

func (s *nitService) Search(ctx context.Context, companyName string) (*models.NITResult, error) {
	name := strings.TrimSpace(companyName)
	if name == "" {
		return nil, ErrCompanyNameRequired
	}

	u, err := url.Parse(s.searchURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad search url: %w", ErrUpstream, err)
	}
	q := u.Query()
	q.Set("q", "nit "+name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", searchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")

	s.log.Info("[nit][search] querying", zap.String("company", name))
	resp, err := utils.CheckStatus(s.http.Do(req))
	if err != nil {
		s.log.Warn("[nit][search] upstream failed", zap.String("company", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchPage))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}

	nit, ok := ExtractNIT(string(body))
	if !ok {
		s.log.Info("[nit][search] no match", zap.String("company", name), zap.Int("page_len", len(body)))
		return nil, ErrNITNotFound
	}
	s.log.Info("[nit][search] found", zap.String("company", name), zap.String("nit", nit))
	return &models.NITResult{Success: true, NIT: nit, CompanyName: companyName}, nil
}

// ExtractNIT returns the first "NIT: 900.123.456-7" style value in text.
func ExtractNIT(text string) (string, bool) {
	m := nitPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
