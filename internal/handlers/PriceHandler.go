package handlers

import (
	"context"

	"CryptoStrategyEval/internal/operations/price"

	"github.com/rs/zerolog"
)

type PriceHandler struct {
	priceRecorder *price.PriceRecorder
	priceFetcher  *price.PriceFetcher
	log           zerolog.Logger
}

func NewPriceHandler(client price.KlineSource, priceRepo price.PriceStore, symbols []string, timeFrame string, historyDays int, log zerolog.Logger) *PriceHandler {
	fetcher := price.NewPriceFetcher(client, log)
	return &PriceHandler{
		priceFetcher:  fetcher,
		priceRecorder: price.NewPriceRecorder(fetcher, priceRepo, symbols, timeFrame, historyDays, log),
		log:           log.With().Str("component", "price_handler").Logger(),
	}
}

// Start backfills the stored history and keeps recording new candles
func (h *PriceHandler) Start(ctx context.Context) error {
	if err := h.Refresh(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Initial price sync incomplete")
	}
	return h.priceRecorder.StartRecording(ctx)
}

// Refresh brings the stored candles of every symbol up to date
func (h *PriceHandler) Refresh(ctx context.Context) error {
	return h.priceRecorder.Sync(ctx)
}
