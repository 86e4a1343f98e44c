package types

// StructuredResult wraps the raw model answer produced by a structured-mode
// extraction. The text is carried through untouched, even when the model did
// not actually return valid JSON.
type StructuredResult struct {
	Result string `json:"result"`
}
