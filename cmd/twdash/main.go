package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bobmcallan/twdash/internal/clients/gnews"
	"github.com/bobmcallan/twdash/internal/clients/twse"
	"github.com/bobmcallan/twdash/internal/common"
	"github.com/bobmcallan/twdash/internal/fetch"
	"github.com/bobmcallan/twdash/internal/format"
	"github.com/bobmcallan/twdash/internal/models"
	"github.com/bobmcallan/twdash/internal/services/extrastock"
	"github.com/bobmcallan/twdash/internal/storage"
)

func main() {
	var (
		configPath  = flag.String("config", os.Getenv("TWDASH_CONFIG"), "path to a TOML config file")
		tickersFlag = flag.String("tickers", "", "comma-separated extra tickers (overrides and persists the stored selection)")
		clearCache  = flag.Bool("clear-cache", false, "drop all cached stock records before resolving")
		outputPath  = flag.String("output", "-", "where to write the dashboard document (- for stdout)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(common.GetFullVersion())
		return
	}

	if err := run(*configPath, *tickersFlag, *clearCache, *outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "twdash: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, tickersFlag string, clearCache bool, outputPath string) error {
	config, err := common.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)
	logger.Info().Str("version", common.GetVersion()).Str("env", config.Environment).Msg("twdash starting")

	store, err := storage.Open(config.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	fetcher := fetch.NewClient(
		fetch.WithHTTPClient(&http.Client{Timeout: config.Clients.TWSE.GetTimeout()}),
		fetch.WithRelays(fetch.RelaysFromTemplates(config.Fetch.Relays)),
		fetch.WithLogger(logger),
	)
	twseClient := twse.NewClient(
		twse.WithBaseURL(config.Clients.TWSE.BaseURL),
		twse.WithRateLimit(config.Clients.TWSE.RateLimit),
		twse.WithFetcher(fetcher),
		twse.WithLogger(logger),
	)
	newsClient := gnews.NewClient(
		gnews.WithBaseURL(config.Clients.News.BaseURL),
		gnews.WithEdition(config.Clients.News.Language, config.Clients.News.Region, config.Clients.News.Edition),
		gnews.WithRateLimit(config.Clients.News.RateLimit),
		gnews.WithFetcher(fetcher),
		gnews.WithLogger(logger),
	)

	svc := extrastock.NewService(store, twseClient, twseClient, newsClient, logger)

	ctx := context.Background()

	if clearCache {
		if err := svc.ClearCache(ctx); err != nil {
			return err
		}
	}

	snapshot, pair, err := loadBaseline(ctx, config.Snapshot.Path, twseClient, logger)
	if err != nil {
		return err
	}

	tickers, err := resolveSelection(ctx, svc, tickersFlag, snapshot)
	if err != nil {
		return err
	}

	records, errs := svc.ResolveExtraStocks(ctx, tickers, pair)
	for ticker, resolveErr := range errs {
		logger.Error().Err(resolveErr).Str("ticker", ticker).Msg("extra stock unresolved")
	}

	doc := buildOutput(snapshot, pair, records, errs)
	if err := writeOutput(outputPath, doc); err != nil {
		return err
	}

	logger.Info().
		Int("extras", len(records)).
		Int("failed", len(errs)).
		Str("day_key", pair.Key()).
		Msg("dashboard document written")
	return nil
}

// loadBaseline reads the precomputed snapshot. When the snapshot is
// missing or unusable the trading-day pair is probed from the exchange
// instead and the dashboard carries extras only.
func loadBaseline(ctx context.Context, path string, twseClient *twse.Client, logger *common.Logger) (*models.BaselineSnapshot, models.TradingDayPair, error) {
	snapshot, err := storage.LoadSnapshot(path)
	if err == nil {
		return snapshot, snapshot.DayPair(), nil
	}

	logger.Warn().Err(err).Msg("snapshot unavailable, probing exchange for trading days")
	pair, probeErr := twseClient.LatestTradingDays(ctx)
	if probeErr != nil {
		return nil, models.TradingDayPair{}, fmt.Errorf("no snapshot and no discoverable trading days: %w", probeErr)
	}
	return nil, pair, nil
}

// resolveSelection decides which extra tickers to use: an explicit
// -tickers flag replaces and persists the stored selection (clearing
// stale cache entries when it changed); otherwise the stored selection
// applies. Tickers already covered by the snapshot's fixed stocks are
// dropped.
func resolveSelection(ctx context.Context, svc *extrastock.Service, tickersFlag string, snapshot *models.BaselineSnapshot) ([]string, error) {
	var tickers []string
	if tickersFlag != "" {
		tickers = extrastock.NormalizeTickers(strings.Split(tickersFlag, ","))
		if err := svc.SaveTickers(ctx, tickers); err != nil {
			return nil, err
		}
	} else {
		tickers = svc.LoadTickers(ctx)
	}

	if snapshot == nil {
		return tickers, nil
	}
	fixed := snapshot.FixedTickers()
	kept := tickers[:0]
	for _, t := range tickers {
		if !fixed[t] {
			kept = append(kept, t)
		}
	}
	return kept, nil
}

// stockView is a resolved extra stock plus the display classes the
// dashboard styles rows with.
type stockView struct {
	*models.StockRecord
	PriceClass string `json:"price_class"`
	D0Class    string `json:"d0_class"`
	D1Class    string `json:"d1_class"`
}

// dashboardOutput is the document handed to the dashboard frontend:
// the snapshot's precomputed blocks passed through untouched, plus the
// freshly resolved extras.
type dashboardOutput struct {
	GeneratedAt      string                 `json:"generated_at"`
	LatestTradingDay string                 `json:"latest_trading_day"`
	PrevTradingDay   string                 `json:"prev_trading_day"`
	Stocks           []models.SnapshotStock `json:"stocks"`
	ExtraStocks      []stockView            `json:"extra_stocks"`
	ExtraErrors      map[string]string      `json:"extra_errors,omitempty"`
	FubonZGB         json.RawMessage        `json:"fubon_zgb,omitempty"`
	FubonZGKD        json.RawMessage        `json:"fubon_zgk_d,omitempty"`
}

func buildOutput(snapshot *models.BaselineSnapshot, pair models.TradingDayPair, records []*models.StockRecord, errs map[string]error) *dashboardOutput {
	doc := &dashboardOutput{
		GeneratedAt:      time.Now().Format(time.RFC3339),
		LatestTradingDay: pair.Latest,
		PrevTradingDay:   pair.Prev,
		ExtraStocks:      make([]stockView, 0, len(records)),
	}
	if snapshot != nil {
		doc.GeneratedAt = snapshot.GeneratedAt
		doc.Stocks = snapshot.Stocks
		doc.FubonZGB = snapshot.FubonZGB
		doc.FubonZGKD = snapshot.FubonZGKD
	}

	for _, rec := range records {
		view := stockView{StockRecord: rec}
		if rec.Price.ChangePct != nil {
			view.PriceClass = format.ColorClass(*rec.Price.ChangePct)
		}
		view.D0Class = format.ForeignClass(rec.ForeignNetLots.D0)
		view.D1Class = format.ForeignClass(rec.ForeignNetLots.D1)
		doc.ExtraStocks = append(doc.ExtraStocks, view)
	}

	if len(errs) > 0 {
		doc.ExtraErrors = make(map[string]string, len(errs))
		for ticker, err := range errs {
			doc.ExtraErrors[ticker] = err.Error()
		}
	}

	return doc
}

func writeOutput(path string, doc *dashboardOutput) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard document: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
