package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	types "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

const (
	operationPlace   = "place"
	operationApprove = "approve"
	operationReject  = "reject"
	operationAdvance = "advance"
	operationCancel  = "cancel"
)

type normalizedRequest struct {
	Operation string            `json:"operation"`
	ActorID   string            `json:"actorId"`
	ActorRole string            `json:"actorRole"`
	OrderID   string            `json:"orderId,omitempty"`
	Fields    []normalizedField `json:"fields"`
}

type normalizedField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func fingerprint(operation string, actor domain.Actor, orderID string, fields map[string]string) (string, error) {
	normalized := normalizedRequest{
		Operation: operation,
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		OrderID:   orderID,
		Fields:    make([]normalizedField, 0, len(fields)),
	}
	for k, v := range fields {
		normalized.Fields = append(normalized.Fields, normalizedField{Key: k, Value: strings.TrimSpace(v)})
	}
	sort.Slice(normalized.Fields, func(i, j int) bool { return normalized.Fields[i].Key < normalized.Fields[j].Key })
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// FingerprintPlaceOrder builds a deterministic hash of the checkout payload (excluding the idempotency key).
func FingerprintPlaceOrder(input types.PlaceOrderInput) (string, error) {
	return fingerprint(operationPlace, input.Actor, "", map[string]string{
		"orderNumber":   input.OrderNumber,
		"customerId":    input.CustomerID,
		"totalAmount":   input.TotalAmount.String(),
		"currency":      strings.ToUpper(input.Currency),
		"paymentStatus": strings.ToLower(input.PaymentStatus),
	})
}

// FingerprintApprove hashes an approve request.
func FingerprintApprove(input types.ApproveOrderInput) (string, error) {
	return fingerprint(operationApprove, input.Actor, input.OrderID, map[string]string{"remarks": input.Remarks})
}

// FingerprintReject hashes a reject request.
func FingerprintReject(input types.RejectOrderInput) (string, error) {
	return fingerprint(operationReject, input.Actor, input.OrderID, map[string]string{"remarks": input.Remarks})
}

// FingerprintUpdateStatus hashes a fulfillment status request.
func FingerprintUpdateStatus(input types.UpdateOrderStatusInput) (string, error) {
	return fingerprint(operationAdvance, input.Actor, input.OrderID, map[string]string{
		"status": strings.ToLower(input.Status),
		"note":   input.Note,
	})
}

// FingerprintCancel hashes a cancellation request.
func FingerprintCancel(input types.CancelOrderInput) (string, error) {
	return fingerprint(operationCancel, input.Actor, input.OrderID, map[string]string{"reason": input.Reason})
}

// idempotent runs fn at most once per key. The key is reserved before fn runs so
// concurrent retries cannot both execute it. A retry with the same fingerprint returns
// the order as it is stored now, or ErrIdempotencyInProgress while the first attempt
// is still running; a different fingerprint fails with ErrIdempotencyConflict.
// A failed attempt releases the key.
func (s *Service) idempotent(ctx context.Context, key string, hash func() (string, error), fn func() (*domain.Order, error)) (*domain.Order, error) {
	key = strings.TrimSpace(key)
	if key == "" || s.idempotency == nil {
		return fn()
	}
	fp, err := hash()
	if err != nil {
		return nil, err
	}
	held, claimed, err := s.idempotency.Reserve(ctx, ports.IdempotencyEntry{
		Key:         key,
		Fingerprint: fp,
		RecordedAt:  s.now(),
	})
	if err != nil {
		return nil, err
	}
	if !claimed {
		switch {
		case held.Fingerprint != fp:
			return nil, ports.ErrIdempotencyConflict
		case held.Pending():
			return nil, ports.ErrIdempotencyInProgress
		}
		return s.replay(ctx, held.OrderID)
	}

	order, err := fn()
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			return nil, errors.Join(err, fmt.Errorf("release idempotency key: %w", releaseErr))
		}
		return nil, err
	}
	// The key stays reserved if this fails, so a retry cannot run fn a second time.
	if err := s.idempotency.Complete(ctx, key, order.ID); err != nil {
		return nil, fmt.Errorf("record idempotency key: %w", err)
	}
	return order, nil
}

func (s *Service) replay(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}
