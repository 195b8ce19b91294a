package assetmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"syscall"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mtlprog/balances/internal/domain"
	"github.com/mtlprog/balances/internal/horizon"
)

// maxTOMLSize caps stellar.toml bodies; SEP-1 limits the file to 100KB.
const maxTOMLSize = 100 * 1024

// errBlockedAddress is returned when a stellar.toml host resolves to a non-public address.
var errBlockedAddress = errors.New("assetmeta: address is not publicly routable")

// HomeDomainFetcher resolves the home_domain of an issuing account.
type HomeDomainFetcher interface {
	FetchHomeDomain(ctx context.Context, accountID string) (string, error)
}

// stellarTOML is the subset of stellar.toml the lookup needs.
type stellarTOML struct {
	Currencies []currency `toml:"CURRENCIES"`
}

type currency struct {
	Code            string `toml:"code"`
	Issuer          string `toml:"issuer"`
	DisplayDecimals *int   `toml:"display_decimals"`
}

// TOMLLookup classifies issued assets from their issuer's stellar.toml.
// An asset is shown in stroops when its CURRENCIES entry declares display_decimals = 0.
type TOMLLookup struct {
	accounts   HomeDomainFetcher
	httpClient *http.Client
	tomlURL    func(homeDomain string) string
}

// NewTOMLLookup creates a new stellar.toml based lookup.
func NewTOMLLookup(accounts HomeDomainFetcher) *TOMLLookup {
	if accounts == nil {
		panic("assetmeta.NewTOMLLookup: accounts is nil")
	}
	return &TOMLLookup{
		accounts:   accounts,
		httpClient: newPublicHTTPClient(),
		tomlURL:    wellKnownURL,
	}
}

// newPublicHTTPClient returns a client that refuses to connect to loopback,
// private or link-local addresses, including after redirects.
func newPublicHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: publicOnlyControl}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: 15 * time.Second, Transport: transport}
}

func publicOnlyControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublicAddr(ip) {
		return fmt.Errorf("%w: %s", errBlockedAddress, ip)
	}
	return nil
}

func isPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsGlobalUnicast() && !ip.IsPrivate()
}

// validHomeDomain accepts a bare host name. Ports, paths, credentials and
// IP literals are rejected since home_domain is set by the issuer.
func validHomeDomain(d string) bool {
	if d == "" || len(d) > 253 || strings.ContainsAny(d, "/?#@:\\%[] \t") {
		return false
	}
	if _, err := netip.ParseAddr(d); err == nil {
		return false
	}
	lower := strings.ToLower(strings.TrimSuffix(d, "."))
	return strings.Contains(lower, ".") && lower != "localhost" && !strings.HasSuffix(lower, ".localhost")
}

func wellKnownURL(homeDomain string) string {
	return "https://" + homeDomain + "/.well-known/stellar.toml"
}

// IsStroopAsset implements classify.Lookup.
func (l *TOMLLookup) IsStroopAsset(ctx context.Context, asset domain.AssetInfo) (bool, error) {
	if asset.IsNative() {
		return false, nil
	}

	homeDomain, err := l.accounts.FetchHomeDomain(ctx, asset.Issuer)
	if err != nil {
		if errors.Is(err, horizon.ErrNotFound) {
			slog.Debug("assetmeta: issuer account not found", "issuer", asset.Issuer)
			return false, nil
		}
		return false, fmt.Errorf("resolving home domain of %s: %w", asset.Issuer, err)
	}
	homeDomain = strings.TrimSpace(homeDomain)
	if homeDomain == "" {
		return false, nil
	}
	if !validHomeDomain(homeDomain) {
		slog.Warn("assetmeta: ignoring unusable home domain", "issuer", asset.Issuer, "home_domain", homeDomain)
		return false, nil
	}

	doc, err := l.fetchTOML(ctx, homeDomain)
	if err != nil {
		return false, err
	}

	for _, c := range doc.Currencies {
		if c.Code != asset.Code || c.Issuer != asset.Issuer {
			continue
		}
		return c.DisplayDecimals != nil && *c.DisplayDecimals == 0, nil
	}
	return false, nil
}

func (l *TOMLLookup) fetchTOML(ctx context.Context, homeDomain string) (stellarTOML, error) {
	url := l.tomlURL(homeDomain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return stellarTOML{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return stellarTOML{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return stellarTOML{}, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTOMLSize+1))
	if err != nil {
		return stellarTOML{}, fmt.Errorf("reading %s: %w", url, err)
	}
	if len(body) > maxTOMLSize {
		return stellarTOML{}, fmt.Errorf("%s exceeds %d bytes", url, maxTOMLSize)
	}

	var doc stellarTOML
	if err := toml.Unmarshal(body, &doc); err != nil {
		return stellarTOML{}, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}
