/*
Package symbolic is a small computer algebra system for the bot's math
commands.

Expressions are immutable trees built through canonicalising constructors
(AddOf, MulOf, PowOf, FuncOf), so structurally equal results print equally:

	e, _ := symbolic.Parse("(x + 1)**2 - x**2")
	symbolic.Expand(e).String() // "2*x + 1"

On top of the tree the package offers:

  - Parse and ParseEquation for calculator-style input
  - Expand, Simplify, Factor and Diff
  - Integrate for elementary antiderivatives
  - Solve for polynomial, rational and simple transcendental equations
  - DSolve for linear constant-coefficient differential equations
  - Poly, a dense rational polynomial type used by the algorithms above

Exact arithmetic uses math/big; numeric roots of high-degree polynomials come
from companion-matrix eigenvalues computed with gonum.
*/
package symbolic
