package trsgd

import (
	"bufio"
	"context"
	"errors"
	"time"

	"github.com/hupe1980/trsgd/blobstore"
	"github.com/hupe1980/trsgd/internal/compress"
)

// SaveModel writes the learner's model to store under name. The name suffix
// selects compression. The blob is only replaced when the whole model was
// written.
func (t *Trainer) SaveModel(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()
	n, err := saveModel(ctx, store, name, t)
	d := time.Since(start)
	t.metrics.RecordSave(n, d, err)
	t.logger.LogSave(ctx, name, n, d, err)
	return err
}

func saveModel(ctx context.Context, store blobstore.BlobStore, name string, t *Trainer) (int, error) {
	w, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}
	cw, err := compress.NewWriter(w, compress.FromName(name))
	if err != nil {
		_ = w.Abort()
		return 0, err
	}
	n, err := t.learner.Save(cw)
	if err == nil {
		err = cw.Close()
	}
	if err != nil {
		_ = w.Abort()
		return n, err
	}
	return n, w.Close()
}

// LoadModel restores the learner's model from store. A missing blob is not an
// error: it is logged and found is false, leaving the learner as it was.
func (t *Trainer) LoadModel(ctx context.Context, store blobstore.BlobStore, name string) (found bool, err error) {
	start := time.Now()
	n, err := loadModel(ctx, store, name, t)
	if errors.Is(err, blobstore.ErrNotFound) {
		t.logger.WarnContext(ctx, "model not found, starting fresh", "name", name)
		return false, nil
	}
	d := time.Since(start)
	t.metrics.RecordLoad(n, d, err)
	t.logger.LogLoad(ctx, name, n, d, err)
	return err == nil, err
}

func loadModel(ctx context.Context, store blobstore.BlobStore, name string, t *Trainer) (int, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer b.Close()

	r, err := compress.NewReader(b, compress.FromName(name))
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return t.learner.Load(bufio.NewReaderSize(r, 1<<16))
}
