package usecase

import (
	"bytes"
	"unicode/utf8"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	"github.com/valyala/bytebufferpool"
)

const (
	DefaultPayloadMaxChars = 120000
	// TruncationMarker closes a cut payload.
	TruncationMarker  = `..."TRUNCATED"]}`
	truncationReserve = 50
)

// Payload is the text handed to the question-answering layer.
type Payload struct {
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
	Chars     int    `json:"chars"`
}

type payloadBody struct {
	PlayerStats []stats.PlayerStats `json:"player_stats"`
	Matches     []stats.Match       `json:"matches"`
}

// BuildPayload serializes player stats and matches. When the text exceeds
// maxChars characters it is cut at maxChars-50 and TruncationMarker is appended.
func BuildPayload(combined stats.Combined, maxChars int) (Payload, error) {
	if maxChars <= 0 {
		return Payload{}, crerr.Wrapf(ErrInvalidInput, "max chars must be > 0, got %d", maxChars)
	}

	body := payloadBody{PlayerStats: combined.PlayerStats, Matches: combined.Matches}
	if body.PlayerStats == nil {
		body.PlayerStats = []stats.PlayerStats{}
	}
	if body.Matches == nil {
		body.Matches = []stats.Match{}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(body); err != nil {
		return Payload{}, crerr.Wrap(err, "encode payload")
	}
	raw := bytes.TrimRight(buf.B, "\n")

	chars := utf8.RuneCount(raw)
	if chars <= maxChars {
		return Payload{Text: string(raw), Chars: chars}, nil
	}

	cut := maxChars - truncationReserve
	if cut < 0 {
		cut = 0
	}
	text := string(raw[:runeOffset(raw, cut)]) + TruncationMarker
	return Payload{Text: text, Truncated: true, Chars: utf8.RuneCountInString(text)}, nil
}

// runeOffset returns the byte offset of the n-th rune in b.
func runeOffset(b []byte, n int) int {
	offset := 0
	for i := 0; i < n && offset < len(b); i++ {
		_, size := utf8.DecodeRune(b[offset:])
		offset += size
	}
	return offset
}
