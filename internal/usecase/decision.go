package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// defaultRetryBackoff is how long to wait before the single retry when
// the assistant completes a run without attaching any message content
// (observed upstream flakiness).
const defaultRetryBackoff = 10 * time.Second

// DeciderConfig holds configuration for the decision protocol.
type DeciderConfig struct {
	RetryBackoff       time.Duration
	EnableDebugLogging bool
}

// Decider turns "item name + candidate list" into a Choice by running a
// scripted prompt/response protocol against the assistant.
type Decider struct {
	assistant    domain.Assistant
	pacer        Pacer
	retryBackoff time.Duration
	sleep        func(time.Duration)
	debug        bool
}

// NewDecider creates a decider with the given assistant and post-call
// pacer.
func NewDecider(assistant domain.Assistant, pacer Pacer, config DeciderConfig) *Decider {
	backoff := config.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	return &Decider{
		assistant:    assistant,
		pacer:        pacer,
		retryBackoff: backoff,
		sleep:        time.Sleep,
		debug:        config.EnableDebugLogging,
	}
}

// Decide picks the store product to buy for itemName among candidates,
// or returns an Unmatched choice when none qualifies. The assistant is
// not called at all for an empty candidate set.
func (d *Decider) Decide(ctx context.Context, itemName string, candidates []domain.CandidateProduct) (domain.Choice, error) {
	if len(candidates) == 0 {
		return domain.Choice{Reason: "no products found in the store"}, nil
	}

	prompt, err := buildPrompt(itemName, candidates)
	if err != nil {
		return domain.Choice{}, err
	}

	reply, err := d.converse(ctx, prompt)
	if err != nil {
		return domain.Choice{}, err
	}

	if reply == "" {
		log.Printf("[DECIDE] empty assistant reply for %q, retrying once in %s", itemName, d.retryBackoff)
		d.sleep(d.retryBackoff)
		reply, err = d.converse(ctx, prompt)
		if err != nil {
			return domain.Choice{}, err
		}
	}

	choice, err := parseReply(reply, candidates)
	if err != nil {
		return domain.Choice{}, err
	}

	if d.debug {
		log.Printf("[DECIDE] %q -> matched=%v reason=%q", itemName, choice.Matched(), choice.Reason)
	}

	// Respect the assistant provider's rate limits before the caller
	// moves on to the next round trip.
	if err := d.pacer.Wait(ctx); err != nil {
		return domain.Choice{}, err
	}

	return choice, nil
}

// converse runs one full submit/poll/fetch cycle and returns the text of
// the first content block of the first response message, or "" when the
// run completed without producing any content.
func (d *Decider) converse(ctx context.Context, prompt string) (string, error) {
	conversationID, err := d.assistant.CreateConversation(ctx, prompt)
	if err != nil {
		return "", err
	}

	outcome, err := d.assistant.Run(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if !outcome.Completed() {
		return "", fmt.Errorf("%w: status %s: %s", domain.ErrAssistantRunFailed, outcome.Status, outcome.LastError)
	}

	messages, err := d.assistant.ListMessages(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if len(messages) == 0 || len(messages[0].Content) == 0 {
		return "", nil
	}
	return messages[0].Content[0], nil
}

// buildPrompt serializes the candidates and asks the assistant to pick
// one. The response-shape contract is restated so a reply is always a
// single JSON object.
func buildPrompt(itemName string, candidates []domain.CandidateProduct) (string, error) {
	serialized, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("failed to serialize candidates: %w", err)
	}

	return fmt.Sprintf(
		"Chcę kupić produkt o nazwie %s. Który produkt z listy powinnam kupić? ```%s``` "+
			"Odpowiedz pojedynczym obiektem JSON: {\"id\", \"name\", \"reason\"} dla wybranego produktu "+
			"albo {\"reason\"}, gdy żaden produkt nie pasuje. Pole id musi pochodzić z listy.",
		itemName, serialized), nil
}

// assistantReply is the raw payload of an assistant response. Pointer
// fields distinguish an absent key from an empty value; the payload is
// validated per variant in parseReply, the single parsing boundary.
type assistantReply struct {
	ID     *string `json:"id"`
	Name   *string `json:"name"`
	Reason *string `json:"reason"`
}

// parseReply decodes the assistant's reply into a Choice. A reply with
// an id is a matched choice and must reference a candidate from the
// presented set; prices always come from that original candidate, never
// from the reply.
func parseReply(content string, candidates []domain.CandidateProduct) (domain.Choice, error) {
	if content == "" {
		return domain.Choice{}, fmt.Errorf("%w: empty reply", domain.ErrMalformedReply)
	}

	var reply assistantReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return domain.Choice{}, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}

	if reply.ID == nil {
		if reply.Reason == nil {
			return domain.Choice{}, fmt.Errorf("%w: reason is required when no product is chosen", domain.ErrMalformedReply)
		}
		return domain.Choice{Reason: *reply.Reason}, nil
	}

	if reply.Name == nil || reply.Reason == nil {
		return domain.Choice{}, fmt.Errorf("%w: name and reason are required for a chosen product", domain.ErrMalformedReply)
	}

	candidate, found := findCandidate(candidates, *reply.ID)
	if !found {
		return domain.Choice{}, fmt.Errorf("%w: %s", domain.ErrUnknownProductID, *reply.ID)
	}

	return domain.Choice{
		Product: &domain.ChosenProduct{
			ID:                  candidate.ID,
			Name:                *reply.Name,
			Price:               candidate.Price,
			PriceAfterPromotion: candidate.PriceAfterPromotion,
		},
		Reason: *reply.Reason,
	}, nil
}

// findCandidate looks up a candidate by id in the presented set.
func findCandidate(candidates []domain.CandidateProduct, id string) (domain.CandidateProduct, bool) {
	for _, candidate := range candidates {
		if candidate.ID == id {
			return candidate, true
		}
	}
	return domain.CandidateProduct{}, false
}
