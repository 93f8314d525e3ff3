// Package intel orchestrates company research: four fixed query angles per
// domain, sent through a SERP provider, assembled into an immutable
// intelligence report.
package intel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FranksOps/vantage/internal/metrics"
	"github.com/FranksOps/vantage/internal/serp"
	"github.com/FranksOps/vantage/internal/storage"
	"github.com/FranksOps/vantage/pkg/ratelimit"
)

// Category is one of the four fixed research angles.
type Category string

const (
	CategoryPositioning     Category = "positioning"
	CategoryCustomers       Category = "customers"
	CategoryStrategicMoves  Category = "strategic_moves"
	CategoryProductStrategy Category = "product_strategy"
)

// Categories lists the research angles in report order.
var Categories = []Category{
	CategoryPositioning,
	CategoryCustomers,
	CategoryStrategicMoves,
	CategoryProductStrategy,
}

var queryTemplates = map[Category]string{
	CategoryPositioning:     "%s vs competitors",
	CategoryCustomers:       "%s customers case study",
	CategoryStrategicMoves:  "%s funding OR acquisition OR partnership",
	CategoryProductStrategy: "%s product launch OR new feature",
}

var categoryLabels = map[Category]string{
	CategoryPositioning:     "Competitive Positioning",
	CategoryCustomers:       "Customer Intelligence",
	CategoryStrategicMoves:  "Strategic Activity",
	CategoryProductStrategy: "Product Developments",
}

// Label returns the human-readable section heading for the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

// Queries builds the four category queries for a domain, in report order.
func Queries(domain, country, language string) []serp.Query {
	queries := make([]serp.Query, 0, len(Categories))
	for _, cat := range Categories {
		queries = append(queries, serp.Query{
			Keyword:  fmt.Sprintf(queryTemplates[cat], domain),
			Country:  country,
			Language: language,
		})
	}
	return queries
}

// CategoryResults holds the extracted records for one research angle,
// in the relevance order the engine returned them.
type CategoryResults struct {
	Category Category      `json:"category"`
	Records  []serp.Record `json:"records"`
}

// Summary is the synthesized executive summary, one insight per category.
type Summary struct {
	MarketPosition string `json:"market_position"`
	KeyCustomers   string `json:"key_customers"`
	RecentMoves    string `json:"recent_moves"`
	ProductFocus   string `json:"product_focus"`
}

// CompanyIntelligence is one finished research report. Immutable after
// assembly; it has no lifecycle beyond rendering or archiving.
type CompanyIntelligence struct {
	ID              string          `json:"id"`
	Domain          string          `json:"domain"`
	GeneratedAt     time.Time       `json:"generated_at"`
	Positioning     CategoryResults `json:"positioning"`
	Customers       CategoryResults `json:"customers"`
	StrategicMoves  CategoryResults `json:"strategic_moves"`
	ProductStrategy CategoryResults `json:"product_strategy"`
	Summary         Summary         `json:"intelligence_summary"`
}

// Sections returns the four category results in report order.
func (ci *CompanyIntelligence) Sections() []CategoryResults {
	return []CategoryResults{ci.Positioning, ci.Customers, ci.StrategicMoves, ci.ProductStrategy}
}

// DomainError wraps a failed research run for one domain. Failures are
// reported per domain; one domain failing never corrupts another's report.
type DomainError struct {
	Domain string
	Err    error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("intel: researching %s: %v", e.Domain, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// Config tunes the research agent.
type Config struct {
	Country  string
	Language string
	// Count caps records kept per category (default 3)
	Count int
	// Concurrency bounds how many of a domain's four queries run at once.
	// The default of 1 issues them strictly one after another.
	Concurrency int
	// Limiter, when set, paces individual queries
	Limiter *ratelimit.Limiter
	// Archive, when set, receives every finished report
	Archive storage.Backend
	Logger  *slog.Logger
}

// Agent researches companies through a SERP provider.
type Agent struct {
	provider serp.Provider
	cfg      Config
	logger   *slog.Logger
}

// New creates a research agent. The provider must not be nil.
func New(provider serp.Provider, cfg Config) (*Agent, error) {
	if provider == nil {
		return nil, errors.New("intel: provider is nil")
	}
	if cfg.Count <= 0 {
		cfg.Count = 3
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{provider: provider, cfg: cfg, logger: logger}, nil
}

// Research generates an intelligence report for one company domain. All four
// categories are gathered or none: if any query fails, the whole domain
// fails and no partial report is returned.
func (a *Agent) Research(ctx context.Context, domain string) (*CompanyIntelligence, error) {
	a.logger.Info("researching company", "domain", domain)

	queries := Queries(domain, a.cfg.Country, a.cfg.Language)
	sections := make([][]serp.Record, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if a.cfg.Limiter != nil {
				if err := a.cfg.Limiter.Wait(gctx); err != nil {
					return err
				}
			}
			records, err := a.provider.Search(gctx, q, a.cfg.Count)
			if err != nil {
				return fmt.Errorf("query %q: %w", q.Keyword, err)
			}
			sections[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.RecordReport("error")
		return nil, &DomainError{Domain: domain, Err: err}
	}

	ci := &CompanyIntelligence{
		ID:              uuid.New().String(),
		Domain:          domain,
		GeneratedAt:     time.Now().UTC(),
		Positioning:     CategoryResults{Category: CategoryPositioning, Records: sections[0]},
		Customers:       CategoryResults{Category: CategoryCustomers, Records: sections[1]},
		StrategicMoves:  CategoryResults{Category: CategoryStrategicMoves, Records: sections[2]},
		ProductStrategy: CategoryResults{Category: CategoryProductStrategy, Records: sections[3]},
	}
	ci.Summary = synthesize(ci)

	metrics.RecordReport("ok")
	a.archive(ctx, ci)

	return ci, nil
}

// ResearchMany researches a batch of domains one at a time. A failure on one
// domain is reported and the remaining domains proceed.
func (a *Agent) ResearchMany(ctx context.Context, domains []string) ([]*CompanyIntelligence, []error) {
	var reports []*CompanyIntelligence
	var errs []error

	for _, domain := range domains {
		ci, err := a.Research(ctx, domain)
		if err != nil {
			a.logger.Warn("research failed", "domain", domain, "err", err)
			errs = append(errs, err)
			continue
		}
		reports = append(reports, ci)
	}

	return reports, errs
}

// archive stores the finished report when a backend is configured. Archive
// failures are logged, not propagated: the report itself is already built.
func (a *Agent) archive(ctx context.Context, ci *CompanyIntelligence) {
	if a.cfg.Archive == nil {
		return
	}

	blob, err := json.Marshal(ci)
	if err != nil {
		a.logger.Warn("failed to encode report for archive", "domain", ci.Domain, "err", err)
		return
	}

	err = a.cfg.Archive.Save(ctx, &storage.Report{
		ID:           ci.ID,
		Domain:       ci.Domain,
		GeneratedAt:  ci.GeneratedAt,
		Intelligence: blob,
	})
	if err != nil {
		a.logger.Warn("failed to archive report", "domain", ci.Domain, "err", err)
	}
}
