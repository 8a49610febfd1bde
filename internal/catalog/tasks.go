package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskVariantRegenerate is the asynq task type for variant regeneration.
const TaskVariantRegenerate = "catalog:variant_regenerate"

type variantRegeneratePayload struct {
	ProductID string `json:"productId"`
}

// NewVariantRegenerateTask builds the asynq task scheduling a wholesale
// variant rebuild for the product.
func NewVariantRegenerateTask(productID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(variantRegeneratePayload{ProductID: productID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVariantRegenerate, payload), nil
}

// Enqueuer schedules catalog background tasks on asynq.
type Enqueuer struct {
	Client *asynq.Client
	Queue  string
}

// EnqueueRegenerate schedules variant regeneration for the product.
func (e Enqueuer) EnqueueRegenerate(ctx context.Context, productID uuid.UUID) error {
	if e.Client == nil {
		return errors.New("catalog: task client not configured")
	}
	task, err := NewVariantRegenerateTask(productID)
	if err != nil {
		return err
	}
	queue := e.Queue
	if queue == "" {
		queue = "default"
	}
	_, err = e.Client.EnqueueContext(ctx, task, asynq.Queue(queue), asynq.MaxRetry(5))
	return err
}

// TaskHandler consumes catalog tasks in the worker process.
type TaskHandler struct {
	Svc *Service
}

// HandleVariantRegenerate processes a variant regeneration task.
func (h TaskHandler) HandleVariantRegenerate(ctx context.Context, task *asynq.Task) error {
	if h.Svc == nil {
		return errors.New("catalog: service not configured")
	}
	var payload variantRegeneratePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w: %w", err, asynq.SkipRetry)
	}
	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		return fmt.Errorf("parse product id: %w: %w", err, asynq.SkipRetry)
	}
	if err := h.Svc.RegenerateVariants(ctx, productID); err != nil {
		if errors.Is(err, ErrNotFound) {
			// product deleted between enqueue and processing
			return nil
		}
		return err
	}
	return nil
}
