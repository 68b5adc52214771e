// Package window turns a sequence of atomic units into overlapping spans.
//
// Each configured window size produces its own sliding-window corpus with
// stride one. Spans from different sizes overlap on purpose: the aggregate
// package folds their scores back onto the units they share.
package window
