package trsgd

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/trsgd/blobstore"
	"github.com/hupe1980/trsgd/feature"
)

func TestTrainer_SaveLoadModel(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"model.txt", "model.txt.zst", "runs/model.lz4"} {
		t.Run(name, func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			metrics := &BasicMetricsCollector{}

			src, err := NewTrainer(newSampler(t, separable()), feature.TSVExtractor{}, newLearner(t),
				WithMetricsCollector(metrics))
			require.NoError(t, err)
			_, err = src.Run(ctx, 2000)
			require.NoError(t, err)
			require.NoError(t, src.SaveModel(ctx, store, name))

			dst, err := NewTrainer(newSampler(t, separable()), feature.TSVExtractor{}, newLearner(t),
				WithMetricsCollector(metrics))
			require.NoError(t, err)
			found, err := dst.LoadModel(ctx, store, name)
			require.NoError(t, err)
			assert.True(t, found)

			a, b := src.Learner(), dst.Learner()
			assert.Equal(t, a.Intercept(), b.Intercept())
			assert.Equal(t, a.Size(), b.Size())
			for s := range a.NumSpaces() {
				for key, vals := range a.Space(s).All() {
					got, err := b.Space(s).Get(key)
					require.NoError(t, err)
					assert.Equal(t, vals, got)
				}
			}

			stats := metrics.GetStats()
			assert.Equal(t, int64(1), stats.SaveCount)
			assert.Equal(t, int64(1), stats.LoadCount)
			assert.Equal(t, int64(0), stats.LoadErrors)
		})
	}
}

func TestTrainer_LoadModelMissing(t *testing.T) {
	tr, err := NewTrainer(newSampler(t, separable()), feature.TSVExtractor{}, newLearner(t))
	require.NoError(t, err)
	found, err := tr.LoadModel(context.Background(), blobstore.NewMemoryStore(), "model.txt")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTrainer_LoadModelCorrupt(t *testing.T) {
	store := blobstore.NewMemoryStore()
	store.Put("model.txt", []byte("n_space: 1\nintercept: 0e+00\n=== Space 0 ===\nmap_size: 1\n0x1\tinf\t0e+00\n=== END ===\n"))

	metrics := &BasicMetricsCollector{}
	tr, err := NewTrainer(newSampler(t, separable()), feature.TSVExtractor{}, newLearner(t),
		WithMetricsCollector(metrics))
	require.NoError(t, err)
	found, err := tr.LoadModel(context.Background(), store, "model.txt")
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrNonFiniteValue)
	assert.True(t, IsFatal(err))
	assert.Equal(t, int64(1), metrics.GetStats().LoadErrors)
}

func TestTrainer_SaveModelUncompressed(t *testing.T) {
	store := blobstore.NewMemoryStore()
	store.Put("model.txt", []byte("previous"))

	tr, err := NewTrainer(newSampler(t, separable()), feature.TSVExtractor{}, newLearner(t))
	require.NoError(t, err)
	// An unknown suffix is stored uncompressed.
	require.NoError(t, tr.SaveModel(context.Background(), store, "model.bin"))

	names, err := store.List(context.Background(), "model")
	require.NoError(t, err)
	assert.Equal(t, []string{"model.bin", "model.txt"}, names)

	b, err := store.Open(context.Background(), "model.bin")
	require.NoError(t, err)
	data, err := io.ReadAll(b)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "n_space: 2\nintercept: "))
	assert.True(t, strings.HasSuffix(string(data), "=== END ===\n"))
}
