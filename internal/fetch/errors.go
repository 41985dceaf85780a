package fetch

import "fmt"

// FetchError is returned when the direct attempt and every relay
// attempt failed for one target URL. It carries the last underlying
// error; earlier failures are logged, not retained.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is returned when extracted payload text does not decode
// as the expected JSON or XML document.
type ParseError struct {
	Source string // short hint: "twse stock_day", "news rss", ...
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed for %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
