package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/utils"
)

// Chains are acyclic by construction; the cap and visited set only guard
// against malformed catalog rows.
const maxChainDepth = 16

type RequestedItem struct {
	Sku string `json:"sku" binding:"required"`
	Qty int    `json:"qty" binding:"required,gt=0"`
}

type Suggestion struct {
	OriginalSku  string `json:"originalSku"`
	SuggestedSku string `json:"suggestedSku"`
	Supplier     string `json:"supplier"`
	Reason       string `json:"reason"`
}

// ProposeSubstitutions scans each requested item independently, in order.
// Items satisfiable from stock emit nothing. Otherwise the substitution
// chain is scanned first-fit: the first alternate whose stock covers the
// quantity wins, regardless of how much stock later entries hold. When no
// alternate qualifies, a self-referencing suggestion signals "cannot
// satisfy" instead of masking the shortfall. Advisory only — stock is never
// decremented or reserved.
func ProposeSubstitutions(ctx context.Context, catalog Catalog, requested []RequestedItem) ([]Suggestion, error) {
	suggestions := []Suggestion{}

	for _, item := range requested {
		if item.Qty <= 0 {
			return nil, utils.NewValidationError("qty", "must be a positive integer")
		}

		// Missing record counts as zero stock.
		record, err := catalog.Lookup(ctx, item.Sku)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, err
		}
		if record != nil && record.Stock >= item.Qty {
			continue
		}

		chain, err := catalog.SubstitutionChain(ctx, item.Sku)
		if err != nil {
			return nil, err
		}

		var viable *models.InventoryRecord
		var viableSku string
		visited := map[string]bool{item.Sku: true}
		depth := 0
		for _, altSku := range chain {
			if depth >= maxChainDepth {
				break
			}
			if visited[altSku] {
				continue
			}
			visited[altSku] = true
			depth++

			alt, err := catalog.Lookup(ctx, altSku)
			if err != nil {
				if errors.Is(err, utils.ErrorRecordNotFound) {
					continue
				}
				return nil, err
			}
			if alt.Stock >= item.Qty {
				viable = alt
				viableSku = altSku
				break
			}
		}

		if viable != nil {
			suggestions = append(suggestions, Suggestion{
				OriginalSku:  item.Sku,
				SuggestedSku: viableSku,
				Supplier:     viable.PreferredSupplier,
				Reason:       fmt.Sprintf("Substitute available with sufficient stock (%d)", viable.Stock),
			})
			continue
		}

		supplier := "UNKNOWN"
		if record != nil {
			supplier = record.PreferredSupplier
		}
		suggestions = append(suggestions, Suggestion{
			OriginalSku:  item.Sku,
			SuggestedSku: item.Sku,
			Supplier:     supplier,
			Reason:       "No stocked substitutes; original not available",
		})
	}

	return suggestions, nil
}
