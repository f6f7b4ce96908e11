package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DelimitedStrategy reads comma, semicolon or tab separated text. Input that is
// not valid UTF-8 is decoded as GB18030, the usual encoding of Excel CSV exports
// on Chinese-locale systems, unless the charset detector is confident it is
// another CJK encoding.
type DelimitedStrategy struct{}

func (DelimitedStrategy) Name() string { return "delimited" }

func (DelimitedStrategy) Parse(_ context.Context, path string) (*RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("file is empty")
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) || bytes.IndexByte(data, 0) >= 0 {
		return nil, errors.New("file is binary, not delimited text")
	}

	charset := "utf-8"
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		var enc encoding.Encoding
		charset, enc = detectEncoding(data)
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode as %s: %w", charset, err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited text: %w", err)
	}
	if len(records) == 0 || isBlankRow(records[0]) {
		return nil, errors.New("no header row")
	}

	return &RawTable{Header: records[0], Rows: records[1:], Encoding: charset}, nil
}

// minConfidence is the detector score needed to override the GB18030 default.
const minConfidence = 90

var detectedEncodings = map[string]encoding.Encoding{
	"Big5":      traditionalchinese.Big5,
	"Shift_JIS": japanese.ShiftJIS,
	"EUC-JP":    japanese.EUCJP,
}

// detectEncoding names the legacy encoding of data, GB18030 unless the
// detector strongly prefers one of detectedEncodings.
func detectEncoding(data []byte) (string, encoding.Encoding) {
	best, err := chardet.NewTextDetector().DetectBest(data)
	if err == nil && best.Confidence >= minConfidence {
		if enc, ok := detectedEncodings[best.Charset]; ok {
			return strings.ToLower(best.Charset), enc
		}
	}
	return "gb18030", simplifiedchinese.GB18030
}

// sniffDelimiter picks the candidate that occurs most often in the first line, outside quotes.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	counts := map[rune]int{',': 0, ';': 0, '\t': 0}
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if _, ok := counts[r]; ok && !inQuotes {
			counts[r]++
		}
	}

	best := ','
	for _, candidate := range []rune{';', '\t'} {
		if counts[candidate] > counts[best] {
			best = candidate
		}
	}
	return best
}
