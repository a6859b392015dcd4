package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/order"
)

type ParsedOrder struct {
	Lines []ParsedLine `json:"lines"`
}

type ParsedLine struct {
	Alias    string `json:"alias"`
	Quantity *int   `json:"quantity"`
	PerUnit  bool   `json:"per_unit"`
	PartHint string `json:"part_hint"`
}

// ExtractOrder runs the extraction prompt and converts the model output
// into raw order lines. A missing quantity defaults to 1; the normalizer
// decides everything else.
func ExtractOrder(
	ctx context.Context,
	client Client,
	message string,
	menuNames []string,
) ([]order.Line, error) {

	rawJSON, err := client.ExtractOrder(ctx, message, menuNames)
	if err != nil {
		return nil, err
	}

	var parsed ParsedOrder
	if err := json.Unmarshal([]byte(rawJSON), &parsed); err != nil {
		return nil, errors.New("invalid LLM JSON output")
	}

	lines := make([]order.Line, 0, len(parsed.Lines))
	for _, pl := range parsed.Lines {
		alias := strings.TrimSpace(pl.Alias)
		if alias == "" {
			continue
		}
		qty := 1
		if pl.Quantity != nil {
			qty = *pl.Quantity
		}
		lines = append(lines, order.Line{
			Alias:    alias,
			Quantity: qty,
			PerUnit:  pl.PerUnit,
			PartHint: strings.TrimSpace(pl.PartHint),
		})
	}

	return lines, nil
}
