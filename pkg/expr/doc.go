// Package expr provides the CEL (Common Expression Language) environment used
// by custom formatting rules.
//
// Expressions are evaluated once per cell and must return a bool. They have
// access to variables:
//   - `score` (double): The cell's score; NaN outside score columns
//   - `column` (string): The column name
//   - `category` (string): The column's category
//   - `student` (string): The row's student identifier
//   - `average` (double): The running average through this column, or the
//     final average for identifier cells; NaN when undefined
//   - `index` (int): The table column index; the identifier is 0
//
// And to functions `classify(string)` and `band(double)`, and constants
// `band.CRITICAL`, `band.WARNING`, `band.SAFE`, `category.EXERCISE`,
// `category.EXAM`, `category.FINAL`, and `category.OTHER`.
package expr
