// Package trsgd trains sparse logistic-regression models online with truncated
// stochastic gradient descent over weighted, newline-delimited record sources.
//
// # Quick Start
//
//	s := sampler.NewSeeded(1)
//	_ = s.AddSource("clicks.tsv", clicks, 1.0)
//	_ = s.AddSource("views.tsv", views, 0.1)
//
//	l, _ := learner.New(4, learner.DefaultParams())
//	t, _ := trsgd.NewTrainer(s, feature.TSVExtractor{}, l,
//	    trsgd.WithLogger(trsgd.NewTextLogger(slog.LevelInfo)),
//	)
//	summary, _ := t.Run(ctx, 10_000_000)
//	_ = t.SaveModel(ctx, blobstore.NewLocalStore("."), "model.txt.zst")
//
// # Packages
//
//   - paramstore: open-addressing weight tables that tolerate insert/delete churn
//   - learner: the model, its update and truncation rules, and its file formats
//   - sampler: mass-weighted record sampling across sources
//   - feature: records and line extractors
//   - blobstore: local, in-memory, S3 and MinIO snapshot storage
//   - codec: line encodings for progress reports
//
// The trsgd command (cmd/trsgd) wires these to data files listed in a DATALIST,
// a TOML or flag configuration and an optional Prometheus endpoint.
//
// # Training Loop
//
// Run reseeks the sampler, then repeatedly takes the next record, extracts its
// features and digests it. Every ReseekEvery records the sampler jumps to a new
// random position; every ReportEvery records the learner's running statistics
// are logged, handed to the MetricsCollector and optionally appended to a
// Reporter, then reset.
//
// # Snapshots
//
// SaveModel and LoadModel move the text model format through a BlobStore. The
// blob name selects compression: ".zst" for zstd, ".lz4" for lz4.
package trsgd
