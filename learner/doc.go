// Package learner implements sparse online logistic regression trained with
// truncated stochastic gradient descent.
//
// # Model
//
// The model is an intercept plus one sparse weight table per feature space. Each
// table is a paramstore.Map[float32] of width 2: slot 0 holds the weight, slot 1
// counts how many updates touched it since it was created.
//
// # Training
//
// Digest scores a record, accumulates its weighted log-loss and, when asked to,
// takes one gradient step:
//
//	eta   = (1/iter)^PowerEta
//	p     = 1 / (1 + exp(-y·f))
//	d     = w·StepSize·eta·(p-1)·y
//	b    -= d
//	w_j  -= d·value_j
//
// Every K-th update a truncation sweep pulls all weights with |w| < Threshold
// toward zero by α = K·StepSize·eta·Gravity. A weight that reaches or crosses zero
// is removed from its table, which keeps the model sparse.
//
// # Files
//
// Parameters and models are plain text. See ReadParams, Learner.Save and
// Learner.Load for the formats. Every model entry carries both table values,
// the weight followed by its update count:
//
//	0x2a	5.0000001e-02	3e+00
//
// The count is informational. Models whose count column is all zeros load and
// train the same way.
//
// A Learner is not safe for concurrent use.
package learner
