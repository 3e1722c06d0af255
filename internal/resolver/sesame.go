package resolver

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/astroscope/internal/astro"
	"go.uber.org/zap"
)

// DefaultSesameURL is the CDS Sesame name resolver.
const DefaultSesameURL = "https://cds.unistra.fr/cgi-bin/nph-sesame"

// SesameResolver queries the CDS Sesame service (Simbad, NED, VizieR).
type SesameResolver struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// NewSesameResolver creates a Sesame client. Empty baseURL and zero timeout use defaults.
func NewSesameResolver(baseURL string, timeout time.Duration, logger *zap.Logger) *SesameResolver {
	if baseURL == "" {
		baseURL = DefaultSesameURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SesameResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "Astroscope/1.0",
		logger:    logger,
	}
}

// Resolve implements Resolver.
func (s *SesameResolver) Resolve(ctx context.Context, name string) (astro.Equatorial, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return astro.Equatorial{}, ErrNotFound
	}

	// -oI: include identifiers; /A: query all databases until one answers.
	reqURL := fmt.Sprintf("%s/-oI/A?%s", s.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return astro.Equatorial{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return astro.Equatorial{}, fmt.Errorf("querying sesame: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return astro.Equatorial{}, fmt.Errorf("querying sesame: HTTP error: %d", resp.StatusCode)
	}

	pos, ok, err := parseSesame(bufio.NewScanner(resp.Body))
	if err != nil {
		return astro.Equatorial{}, fmt.Errorf("parsing sesame response: %w", err)
	}
	if !ok {
		return astro.Equatorial{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.logger.Debug("resolved via sesame", zap.String("name", name),
		zap.Float64("ra", pos.RA), zap.Float64("dec", pos.Dec))
	return pos, nil
}

// parseSesame extracts the first "%J ra dec" line of a Sesame plain-text answer.
func parseSesame(sc *bufio.Scanner) (astro.Equatorial, bool, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "%J ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return astro.Equatorial{}, false, fmt.Errorf("short position line %q", line)
		}
		ra, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return astro.Equatorial{}, false, fmt.Errorf("invalid ra in %q: %w", line, err)
		}
		dec, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return astro.Equatorial{}, false, fmt.Errorf("invalid dec in %q: %w", line, err)
		}
		return astro.Equatorial{RA: ra, Dec: dec}, true, nil
	}
	return astro.Equatorial{}, false, sc.Err()
}
