package commands

import (
	"errors"

	"supplychain/internal/pkg/guard"
)

var ErrTrackShipmentsCommandIsNotConstructed = errors.New(
	"TrackShipmentsCommand must be created via NewTrackShipmentsCommand constructor",
)

// TrackShipmentsCommand triggers one tracking tick over every trackable order.
//
// Example:
//
//	cmd := NewTrackShipmentsCommand()
//	handler := NewTrackShipmentsCommandHandler(pipeline, directory, cfg, metrics, logger)
//
//	ticker := time.NewTicker(time.Second)
//	for range ticker.C {
//	    if err := handler.Handle(ctx, cmd); err != nil {
//	        logger.Error("tracking tick failed", "error", err)
//	    }
//	}
type TrackShipmentsCommand struct {
	guard guard.ConstructorGuard
}

// NewTrackShipmentsCommand creates a tick command. It carries no data.
func NewTrackShipmentsCommand() TrackShipmentsCommand {
	return TrackShipmentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *TrackShipmentsCommand) Validate() error {
	return c.guard.Validate(ErrTrackShipmentsCommandIsNotConstructed)
}
