// Package rule builds conditional formatting rules for a score table.
//
// A [Rule] pairs a [Predicate] with a [style.Style]. The predicate produces a
// [mask.Mask] over the region named by the rule's [Scope]; the style is merged
// into every cell the mask selects. A [Set] is an ordered list of rules in
// overlay priority: later rules win, field by field.
//
// Predicates only read the table, so a [Set] may evaluate them concurrently.
// Styles are always merged sequentially, in rule order.
package rule
