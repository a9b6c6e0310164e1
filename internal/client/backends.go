package client

import (
	"context"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// LocationBackend exposes the location writes of a DataServiceClient in
// the shape the editing workflow expects.
type LocationBackend struct{ C *DataServiceClient }

func (b LocationBackend) Create(ctx context.Context, row world.LocationRow) (string, error) {
	return b.C.create(ctx, "locations", row)
}

func (b LocationBackend) Update(ctx context.Context, id string, row world.LocationRow) error {
	return b.C.update(ctx, "locations", id, row)
}

func (b LocationBackend) Delete(ctx context.Context, id string) error {
	return b.C.delete(ctx, "locations", id)
}

// CharacterBackend exposes the character writes of a DataServiceClient.
type CharacterBackend struct{ C *DataServiceClient }

func (b CharacterBackend) Create(ctx context.Context, row world.CharacterRow) (string, error) {
	return b.C.create(ctx, "characters", row)
}

func (b CharacterBackend) Update(ctx context.Context, id string, row world.CharacterRow) error {
	return b.C.update(ctx, "characters", id, row)
}

func (b CharacterBackend) Delete(ctx context.Context, id string) error {
	return b.C.delete(ctx, "characters", id)
}

// TimelineBackend exposes the chronicle writes of a DataServiceClient.
type TimelineBackend struct{ C *DataServiceClient }

func (b TimelineBackend) Create(ctx context.Context, row world.TimelineRow) (string, error) {
	return b.C.create(ctx, "timeline", row)
}

func (b TimelineBackend) Update(ctx context.Context, id string, row world.TimelineRow) error {
	return b.C.update(ctx, "timeline", id, row)
}

func (b TimelineBackend) Delete(ctx context.Context, id string) error {
	return b.C.delete(ctx, "timeline", id)
}
