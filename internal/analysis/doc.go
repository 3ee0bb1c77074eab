// Package analysis derives summary statistics from a results table:
// per-scale group means, optimal AQ scales, Pareto fronts, per-distance
// curves, descriptive distributions and BD-rate.
//
// Everything here is a pure function of a *results.Table. Absent values are
// NaN and are excluded column by column, so a group with no values for a
// metric has a NaN mean rather than an error.
package analysis
