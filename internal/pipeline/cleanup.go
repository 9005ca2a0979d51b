package pipeline

import (
	"context"
	"sort"
)

// ownedBlobs tracks the blobs this run is responsible for deleting.
type ownedBlobs map[string]struct{}

func (b ownedBlobs) add(name string) {
	b[name] = struct{}{}
}

// deleteBlob removes a blob the run no longer needs. A failed delete keeps the
// name owned so the final release tries once more.
func (o *implOrchestrator) deleteBlob(ctx context.Context, owned ownedBlobs, name string) {
	if _, ok := owned[name]; !ok {
		return
	}
	if err := o.deps.Store.Delete(ctx, name); err != nil {
		o.logger.Warn(ctx, "Failed to delete blob %s: %v", name, err)
		return
	}
	delete(owned, name)
	o.logger.Debug(ctx, "Deleted blob: %s", name)
}

// releaseBlobs deletes every blob still owned. Failures are logged only so
// they never replace the error of the run.
func (o *implOrchestrator) releaseBlobs(ctx context.Context, owned ownedBlobs) {
	names := make([]string, 0, len(owned))
	for name := range owned {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := o.deps.Store.Delete(ctx, name); err != nil {
			o.logger.Error(ctx, "Blob %s left behind: %v", name, err)
			continue
		}
		delete(owned, name)
		o.logger.Debug(ctx, "Deleted blob: %s", name)
	}
}
