// Package dag holds the static link graph between sections: an edge from A
// to B means a list of A runs B. The engine builds it after every load to
// report invocation cycles before they hit the runtime recursion ceiling.
package dag
