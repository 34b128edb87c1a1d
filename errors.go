package semtok

import "errors"

var (
	// ErrCodebookRequired is returned by Tokenize when the tokenizer was
	// built without a codebook. Embedding extraction still works; call
	// Embed instead, or load a codebook.
	ErrCodebookRequired = errors.New("semtok: no codebook loaded")

	// ErrNilEncoder is returned by the constructors when no encoder is given.
	ErrNilEncoder = errors.New("semtok: encoder must not be nil")
)
