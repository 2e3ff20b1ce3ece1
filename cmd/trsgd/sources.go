package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/trsgd/internal/mmap"
	"github.com/hupe1980/trsgd/sampler"
)

// mappedSources holds the memory-mapped data files backing a sampler.
type mappedSources []*mmap.Mapping

func (m mappedSources) Close() error {
	var errs []error
	for _, mp := range m {
		if mp != nil {
			errs = append(errs, mp.Close())
		}
	}
	return errors.Join(errs...)
}

// readSourceList parses the DATALIST file.
func readSourceList(path string) ([]sampler.SourceSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	specs, err := sampler.ReadSourceList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, sampler.ErrNoSources)
	}
	return specs, nil
}

// mapSources maps every listed file in parallel. On error all mappings made so
// far are released.
func mapSources(ctx context.Context, specs []sampler.SourceSpec) (mappedSources, error) {
	maps := make(mappedSources, len(specs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := mmap.Open(spec.Path)
			if err != nil {
				return err
			}
			maps[i] = m
			return m.Advise(mmap.AccessRandom)
		})
	}
	if err := g.Wait(); err != nil {
		_ = maps.Close()
		return nil, err
	}
	return maps, nil
}

// buildSampler links the mapped sources into a sampler seeded with seed.
func buildSampler(specs []sampler.SourceSpec, maps mappedSources, seed uint64) (*sampler.Sampler, error) {
	s := sampler.NewSeeded(seed)
	for i, spec := range specs {
		if err := s.AddSource(spec.Path, maps[i].Bytes(), spec.Weight); err != nil {
			return nil, err
		}
	}
	return s, nil
}
