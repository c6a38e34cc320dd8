package commands

import (
	"context"

	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
)

// ApproveOrderCommandHandler approves created orders whose commitment proof
// verifies. A failed proof leaves the order in the created status.
//
// Example:
//
//	handler := NewApproveOrderCommandHandler(pipeline)
//	cmd, _ := NewApproveOrderCommand(orderID, services.Proof{Value: "1250.00", Nonce: "n-4f1c"})
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrProofVerificationFailed):
//	    log.Println("proof rejected")
//	case errors.Is(err, errs.ErrAlreadyInTargetStatus):
//	    log.Println("already approved")
//	case err != nil:
//	    log.Printf("approval failed: %v", err)
//	default:
//	    log.Printf("order %s approved", o.ID())
//	}
type ApproveOrderCommandHandler struct {
	pipeline *TransitionPipeline
}

// NewApproveOrderCommandHandler creates a handler that fires approvals through pipeline.
func NewApproveOrderCommandHandler(pipeline *TransitionPipeline) ApproveOrderCommandHandler {
	return ApproveOrderCommandHandler{
		pipeline: pipeline,
	}
}

// Handle verifies the proof against the order's price commitment, falling back
// to the quantity commitment, and approves the order on a match.
// Returns errs.ErrObjectNotFound for unknown orders and the validator's typed
// rejection otherwise.
func (h *ApproveOrderCommandHandler) Handle(ctx context.Context, cmd ApproveOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	proof := cmd.Proof()
	return h.pipeline.Fire(ctx, cmd.OrderID(), order.TransitionApprove, services.Evidence{Proof: &proof})
}
