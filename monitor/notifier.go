package monitor

import (
	"context"

	"github.com/leufoulens/zora-trenches/zora"
)

// Notifier delivers alerts to the two routing tiers plus operator status
// messages. Implementations own formatting and any fallback delivery path.
type Notifier interface {
	SendGeneral(ctx context.Context, c *zora.Creator) error
	SendHigh(ctx context.Context, c *zora.Creator, reason, note string) error
	SendStatus(ctx context.Context, text string) error
}
