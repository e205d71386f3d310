// Package expr parses and evaluates the arithmetic expressions used by
// directive lists.
//
// Parsing happens in three steps. The lexer turns the text into a tree of
// tokens, one child tree per parenthesised group. Precedence rules then run
// over every tree bottom-up, each rule replacing "operand op operand" with a
// bound Operator; running the rules left to right within one precedence
// level is what makes every binary operator left-associative. Finally the
// tree must have collapsed to a single Evaluatable, otherwise the parse
// fails and nothing is returned.
//
// All values are float32. Comparison and logical operators return a truth
// value (1 by default, -1 with Options.NegativeTruth) or 0. Division and
// modulo by zero follow IEEE-754 and never fail.
package expr
