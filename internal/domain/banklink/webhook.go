package banklink

import (
	"context"
	"log"
)

// WebhookPayload is the aggregator's out-of-band notification shape.
type WebhookPayload struct {
	WebhookType string        `json:"webhook_type"`
	WebhookCode string        `json:"webhook_code"`
	ItemID      string        `json:"item_id"`
	Error       *WebhookError `json:"error,omitempty"`
}

// WebhookError is the optional error detail on item webhooks.
type WebhookError struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// balance-affecting webhook codes under the TRANSACTIONS type
var balanceUpdateCodes = map[string]struct{}{
	"INITIAL_UPDATE":         {},
	"HISTORICAL_UPDATE":      {},
	"DEFAULT_UPDATE":         {},
	"SYNC_UPDATES_AVAILABLE": {},
}

// HandleWebhook applies an asynchronous update pushed by the aggregator.
// Balance-affecting notifications re-fetch the item's accounts and update
// each row by its aggregator account id. Unrecognized types are ignored,
// not failed: the aggregator retries on non-2xx.
func (s *Service) HandleWebhook(ctx context.Context, payload WebhookPayload) error {
	if payload.WebhookType != "TRANSACTIONS" {
		log.Printf("Ignoring webhook type %s (code %s) for item %s",
			payload.WebhookType, payload.WebhookCode, payload.ItemID)
		return nil
	}
	if _, ok := balanceUpdateCodes[payload.WebhookCode]; !ok {
		log.Printf("Ignoring webhook code %s for item %s", payload.WebhookCode, payload.ItemID)
		return nil
	}
	if payload.ItemID == "" {
		log.Printf("Ignoring balance webhook without item id")
		return nil
	}

	accounts, err := s.accountRepo.ListByItemID(ctx, payload.ItemID)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		// Item unknown locally; accept and ignore.
		log.Printf("Webhook for unknown item %s ignored", payload.ItemID)
		return nil
	}

	// All accounts of the item share one access token.
	refreshed, err := s.refreshTokenGroup(ctx, accounts[0].AccessToken)
	if err != nil {
		return err
	}

	log.Printf("Webhook %s/%s: refreshed %d accounts for item %s",
		payload.WebhookType, payload.WebhookCode, refreshed, payload.ItemID)
	return nil
}
