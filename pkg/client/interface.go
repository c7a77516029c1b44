package client

import (
	"context"

	"github.com/animlab/animutils/pkg/types"
)

// VisionClient is a vision model backend that can locate a region in a frame
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	LocateRegion(ctx context.Context, model, prompt, imgB64 string) (*types.Detection, error)
}
