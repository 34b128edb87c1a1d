// Package semtok turns raw audio waveforms into sequences of discrete
// semantic tokens. It wraps a pretrained speech encoder (reached over HTTP or
// any other Encoder implementation) and a pre-fitted k-means codebook:
// waveforms are resampled, trimmed to a frame multiple and normalized, run
// through the encoder, and each embedding frame of the selected hidden layer
// is assigned the id of its nearest centroid.
//
// Basic usage:
//
//	enc := encoder.NewRemote("http://localhost:8080", "hubert-base-ls960", 768, 16000)
//
//	tok, err := semtok.Load(ctx, enc, store, "codebook.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	batch := semtok.NewBatch(44100, samples)
//
//	tokens, err := tok.Tokenize(ctx, batch)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, ids := range tokens.IDs() {
//	    fmt.Println(ids)
//	}
//
// Codebooks are fitted offline with the codebook package and persisted
// through the blobstore package (local filesystem, memory, MinIO or S3).
package semtok
