package ledger

import (
	"math/big"
	"sort"
	"strings"

	"github.com/bundsx-labs/bundsx-node/pkg/weiconv"
)

// TransactionType is the inferred business meaning of a ledger event.
type TransactionType string

func (t TransactionType) String() string {
	return string(t)
}

const (
	TypeBuy           TransactionType = "buy"
	TypeSell          TransactionType = "sell"
	TypeMarketCreated TransactionType = "market_created"
	TypeUnknown       TransactionType = "unknown"
)

// nativeTokenAddress is the sentinel the indexer uses for the chain's
// native currency in token actions.
const nativeTokenAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// Method selectors of the CurveAMM createMarket entrypoint. The contract
// was redeployed once with a changed signature, so both are recognized.
var createMarketSelectors = map[string]bool{
	"0x6c7d13e2": true,
	"0x9f7b4579": true,
}

// ClassifiedTransaction is a RawLedgerEvent annotated with its inferred
// type, the bond it concerns, and a display-ready ETH amount. Pure function
// of its input event; never mutated after creation.
type ClassifiedTransaction struct {
	Hash            string          `json:"hash"`
	BlockNumber     uint64          `json:"blockNumber"`
	Timestamp       int64           `json:"timestamp"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	Status          string          `json:"status,omitempty"`
	TransactionType TransactionType `json:"transactionType"`
	BondID          *uint64         `json:"bondId"`
	EthAmount       string          `json:"ethAmount,omitempty"`
}

// Classify converts raw indexer events into the activity feed for one
// contract. Events without a transaction hash are dropped silently to keep
// the feed clean. When bondFilter is set, only events whose extracted bond
// id equals it survive; an event whose bond id could not be parsed inherits
// the filter value as a convenience default before filtering, which can
// mislabel it - the feed is best effort, not an accounting source.
func Classify(events []RawLedgerEvent, contract string, bondFilter *uint64) []ClassifiedTransaction {
	classified := make([]ClassifiedTransaction, 0, len(events))

	for _, event := range events {
		if event.Details.TxHash == "" {
			continue
		}
		classified = append(classified, classifyOne(event, contract, bondFilter))
	}

	sort.SliceStable(classified, func(i, j int) bool {
		return classified[i].Timestamp > classified[j].Timestamp
	})

	if bondFilter == nil {
		return classified
	}
	return FilterByBond(classified, *bondFilter)
}

// FilterByBond retains only transactions whose extracted bond id equals
// bondID. Transactions with no bond id are dropped.
func FilterByBond(txs []ClassifiedTransaction, bondID uint64) []ClassifiedTransaction {
	filtered := make([]ClassifiedTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.BondID != nil && *tx.BondID == bondID {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

func classifyOne(event RawLedgerEvent, contract string, bondFilter *uint64) ClassifiedTransaction {
	tx := ClassifiedTransaction{
		Hash:            event.Details.TxHash,
		BlockNumber:     event.Details.BlockNumber,
		Timestamp:       event.Timestamp(),
		From:            event.Details.FromAddress,
		To:              event.Details.ToAddress,
		Status:          event.Details.Status,
		TransactionType: TypeUnknown,
	}

	if action := findNativeTransfer(event.Details.TokenActions, contract, true); action != nil {
		tx.TransactionType = TypeBuy
		tx.EthAmount = formatNativeAmount(action.Amount)
	} else if action := findNativeTransfer(event.Details.TokenActions, contract, false); action != nil {
		tx.TransactionType = TypeSell
		tx.EthAmount = formatNativeAmount(action.Amount)
	}

	// Market creation wins over the transfer-direction inference.
	selector := methodSelector(event.Details.Input)
	if createMarketSelectors[selector] || strings.Contains(event.Details.EventName, "MarketCreated") {
		tx.TransactionType = TypeMarketCreated
	}

	if bondID, ok := extractBondID(event.Details.Input); ok {
		tx.BondID = &bondID
	} else if bondFilter != nil {
		v := *bondFilter
		tx.BondID = &v
	}

	return tx
}

// findNativeTransfer scans token actions for a native-currency transfer
// flowing into (incoming=true) or out of the target contract.
func findNativeTransfer(actions []TokenAction, contract string, incoming bool) *TokenAction {
	for i := range actions {
		action := &actions[i]
		if !strings.EqualFold(action.Address, nativeTokenAddress) ||
			!strings.EqualFold(action.Standard, "native") {
			continue
		}
		if incoming && strings.EqualFold(action.ToAddress, contract) {
			return action
		}
		if !incoming && strings.EqualFold(action.FromAddress, contract) {
			return action
		}
	}
	return nil
}

// methodSelector returns the lowercased 4-byte selector including the 0x
// prefix, or "" when the input is too short to carry one.
func methodSelector(input string) string {
	if len(input) < 10 {
		return ""
	}
	return strings.ToLower(input[:10])
}

// extractBondID parses the first 32-byte call parameter as a big-endian
// integer. Inputs shorter than selector plus one full word, values that do
// not fit uint64, and malformed hex all fail extraction.
func extractBondID(input string) (uint64, bool) {
	if len(input) < 74 || !strings.HasPrefix(input, "0x") {
		return 0, false
	}

	word, ok := new(big.Int).SetString(input[10:74], 16)
	if !ok || !word.IsUint64() {
		return 0, false
	}
	return word.Uint64(), true
}

func formatNativeAmount(amount string) string {
	wei, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return ""
	}
	return weiconv.ToEthString(wei, 6)
}
