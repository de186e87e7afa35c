package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"vendas/internal/core/id"
)

// ExportHistory streams the full movement history of a product to w as
// zstd-compressed JSON lines, oldest-first. The movement table is
// append-only and grows without bound; this is the archival path.
func (s *Service) ExportHistory(ctx context.Context, productID id.ID, w io.Writer) error {
	movements, err := s.History(ctx, productID, MovementFilter{Ascending: true})
	if err != nil {
		return err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}

	enc := json.NewEncoder(zw)
	for i := range movements {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return err
		}
		if err := enc.Encode(&movements[i]); err != nil {
			_ = zw.Close()
			return fmt.Errorf("encode movement: %w", err)
		}
	}

	return zw.Close()
}
