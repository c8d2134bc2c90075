package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/Retriva/internal/core"
)

// PDFs are the single most failure-prone input (scanned, encrypted,
// malformed), so extraction degrades through successively cruder heuristics
// instead of aborting: structured parse, then text-object scanning, then a
// loose whole-file scan, then a sentinel placeholder.

var (
	reTextObject  = regexp.MustCompile(`(?s)BT.*?ET`)
	reParenString = regexp.MustCompile(`\((.*?)\)`)
	reHexString   = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
	reStream      = regexp.MustCompile(`(?s)stream\s(.*?)\sendstream`)
	reWord        = regexp.MustCompile(`[a-zA-Z]{3,}`)
	reIndirectRef = regexp.MustCompile(`^[0-9]+\s[0-9]+\sR$`)
	reControlChar = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	reWhitespace  = regexp.MustCompile(`\s+`)
	reAlnum       = regexp.MustCompile(`[a-zA-Z0-9]`)
)

func (e *DocconvExtractor) extractPDF(data []byte) core.ExtractedText {
	text, primaryErr := e.parsePDF(data)
	if primaryErr == nil {
		return core.ExtractedText{Source: core.SourcePrimary, Text: text}
	}

	frags := layoutFragments(data)
	source := core.SourceLayout
	if len(frags) == 0 {
		frags = looseFragments(data)
		source = core.SourceLoose
	}

	if cleaned := cleanFragments(frags); len(cleaned) > e.opts.MinUsableChars {
		return core.ExtractedText{Source: source, Text: cleaned}
	}

	return core.ExtractedText{
		Source: core.SourceSentinel,
		Text:   sentinelText(len(data), primaryErr),
	}
}

// parsePDF runs the structured parser and validates that it produced real
// text: non-empty after trimming and at least MinAlnumChars alphanumerics.
func (e *DocconvExtractor) parsePDF(data []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(res.Body) == "" {
		return "", errors.New("PDF was parsed but no text was extracted")
	}
	if len(reAlnum.FindAllString(res.Body, -1)) < e.opts.MinAlnumChars {
		return "", errors.New("PDF content appears to be mostly non-readable characters")
	}
	return res.Body, nil
}

// layoutFragments scans the raw bytes for PDF text objects (BT..ET blocks)
// and pulls out parenthesised literal strings and hex strings, then scans
// stream..endstream blocks for alphabetic runs.
func layoutFragments(data []byte) []string {
	raw := string(data)
	var frags []string

	for _, block := range reTextObject.FindAllString(raw, -1) {
		for _, m := range reParenString.FindAllStringSubmatch(block, -1) {
			frags = append(frags, m[1])
		}
		for _, m := range reHexString.FindAllStringSubmatch(block, -1) {
			if decoded := decodeHexString(m[1]); decoded != "" {
				frags = append(frags, decoded)
			}
		}
	}

	for _, m := range reStream.FindAllStringSubmatch(raw, -1) {
		frags = append(frags, reWord.FindAllString(m[1], -1)...)
	}

	return frags
}

// looseFragments is the last resort before the sentinel: every parenthesised
// substring and every alphabetic run of length >= 3 anywhere in the file.
func looseFragments(data []byte) []string {
	raw := string(data)
	var frags []string
	for _, m := range reParenString.FindAllStringSubmatch(raw, -1) {
		frags = append(frags, m[1])
	}
	frags = append(frags, reWord.FindAllString(raw, -1)...)
	return frags
}

// cleanFragments drops PDF structural tokens, joins the survivors and
// normalizes escapes and whitespace.
func cleanFragments(frags []string) string {
	kept := make([]string, 0, len(frags))
	for _, f := range frags {
		if strings.HasPrefix(f, "/") || f == "obj" || f == "endobj" || reIndirectRef.MatchString(f) {
			continue
		}
		kept = append(kept, f)
	}

	text := strings.Join(kept, " ")
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\r`, "")
	text = strings.ReplaceAll(text, `\t`, " ")
	text = reControlChar.ReplaceAllString(text, " ")
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// decodeHexString turns a PDF hex string into text, two hex digits per byte.
func decodeHexString(hex string) string {
	var b strings.Builder
	for i := 0; i < len(hex); i += 2 {
		end := i + 2
		if end > len(hex) {
			end = len(hex)
		}
		n, err := strconv.ParseUint(hex[i:end], 16, 8)
		if err != nil {
			continue
		}
		b.WriteByte(byte(n))
	}
	return b.String()
}

// sentinelText is the soft-failure placeholder. It deliberately does not
// raise an error so ingestion continues with clearly marked content instead
// of losing the document outright.
func sentinelText(byteLen int, primaryErr error) string {
	msg := "Unknown error"
	if primaryErr != nil {
		msg = primaryErr.Error()
	}
	return fmt.Sprintf(
		"[PDF TEXT EXTRACTION FAILED] This document appears to be a PDF but text extraction failed. "+
			"The PDF may be scanned, image-based, or have restrictive permissions. File size: %d bytes. Error: %s",
		byteLen, msg,
	)
}
