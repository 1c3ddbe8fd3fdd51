package body

import (
	"io"
	"slices"

	"http-message/http"
	"http-message/http/transfer"
	iolib "http-message/lib/io"

	"github.com/pkg/errors"
)

// Codings returns the content codings then the transfer codings declared in headers,
// in the order they apply.
func Codings(headers http.Reader) (content, transfers []transfer.Coding) {
	for _, tokens := range http.GetKey(headers, http.ContentEncoding) {
		content = append(content, transfer.ParseCodings(tokens)...)
	}
	for _, tokens := range http.GetKey(headers, http.TransferEncoding) {
		transfers = append(transfers, transfer.ParseCodings(tokens)...)
	}
	return content, transfers
}

// Write streams the body to w, applying the codings declared in headers.
// A body kept as chunks and written with only the chunked coding keeps its
// original chunks and trailers.
// If no workspace is available, or a coder defers, an error wrapping
// [transfer.ErrDeferred] is returned before anything is written.
func (b *Body) Write(headers http.Reader, w io.Writer) error {
	content, transfers := Codings(headers)
	codings := slices.Concat(content, transfers)

	if len(content) == 0 && slices.Equal(transfers, []transfer.Coding{transfer.CodingChunked}) {
		if chunks, ok := b.Chunks(); ok {
			encoded, err := transfer.EncodeChunks(chunks, b.Trailers()...)
			if err != nil {
				return errors.Wrap(err, "encoding chunks")
			}
			if _, err := iolib.WriteFull(w, encoded); err != nil {
				return errors.Wrap(err, "writing chunks")
			}
			return nil
		}
	}

	scratch, release, err := b.scratch()
	if err != nil {
		return err
	}
	defer release()

	var sendTrailers func() []http.Field
	if trailers := b.Trailers(); len(trailers) > 0 {
		sendTrailers = func() []http.Field { return trailers }
	}

	enc, err := b.opts.Pipeline.Encode(iolib.NopWriteCloser(w), codings, sendTrailers)
	if err != nil {
		return errors.Wrap(err, "building coding pipeline")
	}

	r, err := b.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	if _, err := io.CopyBuffer(enc, r, scratch); err != nil {
		return errors.Wrap(err, "encoding body")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "finishing encoding")
	}

	return nil
}

func (b *Body) scratch() ([]byte, func(), error) {
	if b.opts.Workspaces == nil {
		return make([]byte, b.opts.BlockSize), func() {}, nil
	}

	ws, err := b.opts.Workspaces.Acquire()
	if err != nil {
		return nil, nil, err
	}
	return ws.Bytes(), ws.Release, nil
}
