// Package transform computes closed-form Laplace and Fourier transforms of
// symbolic expressions and sampled magnitude spectra of numeric functions.
//
// Closed forms come from a table of transform pairs combined with the
// linearity, frequency shift and multiplication-by-t rules. Inverse Laplace
// transforms of proper rational functions are found by partial fractions.
// The Fourier convention is the unitary ordinary-frequency one:
//
//	F(k) = ∫ f(x) exp(-2πikx) dx
//
// Expressions outside the table return an error wrapping
// symbolic.ErrNoClosedForm.
package transform
