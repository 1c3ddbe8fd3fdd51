package codec

import (
	"bytes"

	"http-message/http"
	"http-message/util/rule"
)

// Grammar reads and writes the field lines of one protocol version.
type Grammar interface {
	// Parse types a single, already unfolded, field line.
	Parse(line []byte) (http.Header, error)
	Serialize(h http.Header) []byte
	// Validate reports whether line may appear in a header section,
	// continuation lines included.
	Validate(line []byte) bool
	// Unfold joins a continuation line to the field line before it.
	Unfold(prev, cont []byte) ([]byte, error)
}

type fieldGrammar struct{ allowFold bool }

var (
	// Grammar10 accepts obs-fold and replaces it with a single SP.
	Grammar10 Grammar = fieldGrammar{allowFold: true}
	// Grammar11 rejects obs-fold.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.2
	Grammar11 Grammar = fieldGrammar{allowFold: false}
)

func (g fieldGrammar) Parse(line []byte) (http.Header, error) {
	field, err := http.ParseField(line)
	if err != nil {
		return http.Header{}, err
	}
	return http.HeaderFromField(field)
}

func (g fieldGrammar) Serialize(h http.Header) []byte {
	field := h.Field()
	return field.Text()
}

func (g fieldGrammar) Validate(line []byte) bool {
	if isContinuation(line) {
		return g.allowFold
	}
	_, err := g.Parse(line)
	return err == nil
}

func (g fieldGrammar) Unfold(prev, cont []byte) ([]byte, error) {
	if !g.allowFold {
		return nil, ErrObsFold
	}

	cont = bytes.TrimFunc(cont, rule.IsOWS)
	if len(cont) == 0 {
		return prev, nil
	}

	joined := make([]byte, 0, len(prev)+1+len(cont))
	joined = append(joined, prev...)
	joined = append(joined, rule.SP)
	return append(joined, cont...), nil
}

func isContinuation(line []byte) bool {
	return len(line) > 0 && (line[0] == rule.SP || line[0] == rule.HTAB)
}
