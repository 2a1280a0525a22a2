package workers

import (
	"context"
	"log"
	"strings"
	"time"

	"clan-wars-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SolMint is the wrapped-SOL mint — native SOL appears as this on DEXes.
const SolMint = "So11111111111111111111111111111111111111112"

const lamportsPerSol = 1_000_000_000

// ImportBatchSize is how many swaps we pull from Helius per import run.
const ImportBatchSize = 100

// ParsedTrade is a classified swap, not yet attributed to a user/clan.
type ParsedTrade struct {
	TokenSymbol   string
	TokenMint     string
	Type          string // buy | sell
	AmountSol     float64
	AmountTokens  float64
	PricePerToken float64
	Signature     string
	TradedAt      time.Time
}

// ImportResult reports one import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// TradeImporter pulls a wallet's swap history from Helius, classifies
// buys/sells, dedupes against stored trades by signature, and writes the
// new rows attributed to the user's current clan.
type TradeImporter struct {
	DB     *gorm.DB
	Helius *HeliusClient
}

func NewTradeImporter(db *gorm.DB, helius *HeliusClient) *TradeImporter {
	return &TradeImporter{DB: db, Helius: helius}
}

// ClassifySwaps turns Helius swaps into trades:
//   - user sent SOL and received tokens → buy
//   - user sent tokens and received SOL → sell
//   - token-to-token with wrapped SOL on one side → use the SOL side
//   - pure token-to-token without SOL involvement → skipped
func ClassifySwaps(swaps []HeliusSwap) []ParsedTrade {
	var trades []ParsedTrade

	for _, swap := range swaps {
		tradedAt := time.Unix(swap.Timestamp, 0).UTC()

		// Case 1: SOL → token (buy)
		if swap.NativeInput != nil && swap.NativeInput.Amount > 0 && len(swap.TokenOutputs) > 0 {
			sol := swap.NativeInput.Amount / lamportsPerSol
			out := swap.TokenOutputs[0]
			trades = append(trades, newParsedTrade(models.TradeBuy, out, sol, swap.Signature, tradedAt))
			continue
		}

		// Case 2: token → SOL (sell)
		if swap.NativeOutput != nil && swap.NativeOutput.Amount > 0 && len(swap.TokenInputs) > 0 {
			sol := swap.NativeOutput.Amount / lamportsPerSol
			in := swap.TokenInputs[0]
			trades = append(trades, newParsedTrade(models.TradeSell, in, sol, swap.Signature, tradedAt))
			continue
		}

		// Case 3: token → token with wrapped SOL on one side
		if len(swap.TokenInputs) > 0 && len(swap.TokenOutputs) > 0 {
			if solIn := findMint(swap.TokenInputs, SolMint); solIn != nil {
				other := firstNonSol(swap.TokenOutputs)
				sol := solIn.Amount / lamportsPerSol
				trades = append(trades, newParsedTrade(models.TradeBuy, other, sol, swap.Signature, tradedAt))
			} else if solOut := findMint(swap.TokenOutputs, SolMint); solOut != nil {
				other := firstNonSol(swap.TokenInputs)
				sol := solOut.Amount / lamportsPerSol
				trades = append(trades, newParsedTrade(models.TradeSell, other, sol, swap.Signature, tradedAt))
			}
			// Pure token-to-token swaps without SOL involvement are skipped.
		}
	}

	return trades
}

func newParsedTrade(tradeType string, token HeliusTokenTransfer, sol float64, signature string, tradedAt time.Time) ParsedTrade {
	price := 0.0
	if token.Amount > 0 {
		price = sol / token.Amount
	}
	return ParsedTrade{
		TokenSymbol:   fallbackSymbol(token.Mint),
		TokenMint:     token.Mint,
		Type:          tradeType,
		AmountSol:     sol,
		AmountTokens:  token.Amount,
		PricePerToken: price,
		Signature:     signature,
		TradedAt:      tradedAt,
	}
}

func findMint(transfers []HeliusTokenTransfer, mint string) *HeliusTokenTransfer {
	for i := range transfers {
		if transfers[i].Mint == mint {
			return &transfers[i]
		}
	}
	return nil
}

func firstNonSol(transfers []HeliusTokenTransfer) HeliusTokenTransfer {
	for _, t := range transfers {
		if t.Mint != SolMint {
			return t
		}
	}
	return transfers[0]
}

// fallbackSymbol is the display symbol when metadata resolution fails.
func fallbackSymbol(mint string) string {
	if len(mint) > 6 {
		mint = mint[:6]
	}
	return strings.ToUpper(mint)
}

// Import runs the full pipeline for one wallet. Trades are attributed to
// the caller's current clan; rows whose signature already exists for the
// user are skipped, so re-running is safe.
func (w *TradeImporter) Import(ctx context.Context, userID, clanID, walletAddress string) (*ImportResult, error) {
	swaps, err := w.Helius.FetchSwaps(ctx, walletAddress, ImportBatchSize)
	if err != nil {
		return nil, err
	}
	if len(swaps) == 0 {
		return &ImportResult{}, nil
	}

	parsed := ClassifySwaps(swaps)
	if len(parsed) == 0 {
		return &ImportResult{Total: len(swaps)}, nil
	}

	// Resolve proper symbols; truncated mints stay as fallback.
	mints := make([]string, len(parsed))
	for i, t := range parsed {
		mints[i] = t.TokenMint
	}
	symbols, err := w.Helius.ResolveTokenSymbols(ctx, mints)
	if err != nil {
		log.Printf("[Import] token metadata resolution failed, using truncated mints: %v", err)
	}
	for i := range parsed {
		if s, ok := symbols[parsed[i].TokenMint]; ok && s != "" {
			parsed[i].TokenSymbol = s
		}
	}

	// Dedup against stored trades by signature.
	signatures := make([]string, len(parsed))
	for i, t := range parsed {
		signatures[i] = t.Signature
	}
	var existing []string
	if err := w.DB.Model(&models.Trade{}).
		Where("user_id = ? AND signature IN ?", userID, signatures).
		Pluck("signature", &existing).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}

	var rows []models.Trade
	for _, t := range parsed {
		if seen[t.Signature] {
			continue
		}
		sig := t.Signature
		rows = append(rows, models.Trade{
			ID:            uuid.NewString(),
			UserID:        userID,
			ClanID:        clanID,
			TokenSymbol:   t.TokenSymbol,
			TokenMint:     t.TokenMint,
			TradeType:     t.Type,
			AmountUsd:     t.AmountSol,
			TokenAmount:   t.AmountTokens,
			PricePerToken: t.PricePerToken,
			Signature:     &sig,
			CreatedAt:     t.TradedAt,
		})
	}

	result := &ImportResult{
		Imported: len(rows),
		Skipped:  len(parsed) - len(rows),
		Total:    len(parsed),
	}
	if len(rows) == 0 {
		return result, nil
	}

	if err := w.DB.Create(&rows).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// PollLinkedWallets periodically imports trades for every profile that has
// a linked wallet and an active clan membership. Import is idempotent per
// signature, so overlapping windows are harmless.
func PollLinkedWallets(ctx context.Context, importer *TradeImporter, pollInterval time.Duration) {
	log.Println("Starting linked-wallet trade polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Wallet trade polling stopped.")
			return
		case <-ticker.C:
			type linked struct {
				UserID  string
				Address string
				ClanID  string
			}
			var wallets []linked
			err := importer.DB.Raw(`
                SELECT p.id AS user_id, p.wallet_address AS address, m.clan_id
                FROM profiles p
                INNER JOIN clan_members m
                    ON m.user_id = p.id AND m.left_at IS NULL
                WHERE p.wallet_address IS NOT NULL
            `).Scan(&wallets).Error
			if err != nil {
				log.Printf("❌ Error listing linked wallets: %v", err)
				continue
			}

			for _, w := range wallets {
				res, err := importer.Import(ctx, w.UserID, w.ClanID, w.Address)
				if err != nil {
					log.Printf("❌ Import failed for wallet %s: %v", w.Address, err)
					continue
				}
				if res.Imported > 0 {
					log.Printf("📥 Imported %d new trade(s) for wallet %s (%d already existed)",
						res.Imported, w.Address, res.Skipped)
				}
			}
		}
	}
}
