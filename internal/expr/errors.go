package expr

import "fmt"

// SyntaxError reports a parse failure at a column of the expression text.
type SyntaxError struct {
	Text string
	Pos  int
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s at column %d of %q", msg, e.Pos+1, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
