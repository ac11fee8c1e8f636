package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-settlement-service/internal/usecase/dto/order"
	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
)

func (uc *DefaultOrderUsecase) buildOrder(input *orderdto.CreateOrderInput) (*domain.Order, error) {
	buyerID := strings.TrimSpace(input.BuyerID)
	sellerID := strings.TrimSpace(input.SellerID)
	if buyerID == "" || sellerID == "" {
		return nil, fmt.Errorf("%w: buyer and seller are required", domain.ErrInvalidInput)
	}
	if buyerID == sellerID {
		return nil, fmt.Errorf("%w: buyer and seller must differ", domain.ErrInvalidInput)
	}
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: order has no lines", domain.ErrInvalidInput)
	}

	var token string
	total := decimal.Zero
	lines := make([]domain.OrderLine, 0, len(input.Lines))
	for i, in := range input.Lines {
		if strings.TrimSpace(in.ProductID) == "" {
			return nil, fmt.Errorf("%w: line %d has no product", domain.ErrInvalidInput, i)
		}
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d quantity must be positive", domain.ErrInvalidInput, i)
		}
		if in.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: line %d unit price is negative", domain.ErrInvalidInput, i)
		}
		lineToken, err := uc.Tokens.Normalize(in.Token)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		if token == "" {
			token = lineToken
		} else if lineToken != token {
			return nil, fmt.Errorf("%w: all lines must use %s", domain.ErrInvalidInput, token)
		}

		line := domain.OrderLine{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Token:     lineToken,
		}
		total = total.Add(line.Subtotal())
		lines = append(lines, line)
	}
	if err := uc.Tokens.ValidateAmount(token, total); err != nil {
		return nil, fmt.Errorf("order total: %w", err)
	}

	idGenerator, err := nanoid.Standard(12)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &domain.Order{
		ID:             uuid.NewString(),
		Number:         idGenerator(),
		BuyerID:        buyerID,
		SellerID:       sellerID,
		Lines:          lines,
		Token:          token,
		Total:          total,
		Status:         domain.StatusPending,
		DisputeAmount:  decimal.Zero,
		IdempotencyKey: strings.TrimSpace(input.IdempotencyKey),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CreateOrder locks the order total in escrow and stores the order in one
// transaction; when the buyer cannot cover the total nothing is created.
func (uc *DefaultOrderUsecase) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.OrderOutput, error) {
	order, err := uc.buildOrder(input)
	if err != nil {
		return nil, err
	}

	keys := []string{domain.OrderKey(order.ID)}
	if order.IdempotencyKey != "" {
		keys = append(keys, domain.IdempotencyKey("order", order.IdempotencyKey))
	}

	output := &orderdto.OrderOutput{}
	err = uc.Transactor.Atomically(ctx, keys, func(ctx context.Context) error {
		if order.IdempotencyKey != "" {
			existing, err := uc.OrderRepo.GetOrderByIdempotencyKey(ctx, order.IdempotencyKey)
			switch {
			case err == nil:
				if existing.BuyerID != order.BuyerID || existing.SellerID != order.SellerID ||
					existing.Token != order.Token || !existing.Total.Equal(order.Total) {
					return fmt.Errorf("%w: order key %q", domain.ErrIdempotencyConflict, order.IdempotencyKey)
				}
				hold, err := uc.Escrow.GetHold(ctx, existing.ID)
				if err != nil {
					return err
				}
				output.Order, output.Hold, output.Replayed = existing, hold, true
				return nil
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}
		}

		hold, err := uc.Escrow.OpenHold(ctx, order)
		if err != nil {
			return err
		}
		if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := uc.OrderRepo.AppendTransition(ctx, &domain.OrderTransition{
			OrderID:   order.ID,
			To:        domain.StatusPending,
			ActorID:   input.Actor.ID,
			ActorRole: input.Actor.Role,
			Note:      "order created",
			CreatedAt: order.CreatedAt,
		}); err != nil {
			return err
		}

		output.Order, output.Hold = order, hold
		uc.Transactor.AfterCommit(ctx, func() {
			uc.recordOrderCreatedMetrics(order)
			uc.Emitter.Order(ctx, uc.orderEvent(order, "", input.Actor))
		})
		return nil
	})
	if err != nil {
		uc.recordFailure("create_order", err)
		return nil, fmt.Errorf("create order: %w", err)
	}
	return output, nil
}
