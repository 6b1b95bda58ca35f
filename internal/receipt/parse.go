package receipt

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrUnparsable is returned when no structured receipt data could be
// recovered from the model response.
var ErrUnparsable = errors.New("receipt: response contains no parsable receipt data")

var (
	fenceRe           = regexp.MustCompile("```json\\s*|\\s*```")
	trailingPartialRe = regexp.MustCompile(`,\s*"[^"]*"?\s*:?\s*[^,{}\[\]]*$`)
	trailingCommaRe   = regexp.MustCompile(`,\s*$`)
	vendorInfoRe      = regexp.MustCompile(`"vendor_info"\s*:\s*(\{[^{}]*\})`)
	lineItemsRe       = regexp.MustCompile(`(?s)"line_items"\s*:\s*\[(.*?)(?:\]|$)`)
)

// ParseResponse extracts a Receipt from raw model output.
//
// It tolerates markdown code fences and truncated JSON (the model can run
// out of tokens mid-object). Recovery is attempted in order: parse as-is,
// repair truncation by dropping the trailing partial property and closing
// unbalanced braces, then salvage vendor_info and any complete line_items
// entries. If nothing usable is recovered the single error is ErrUnparsable.
func ParseResponse(content string) (*Receipt, error) {
	trimmed := strings.TrimSpace(content)
	if !strings.Contains(trimmed, "{") {
		return nil, ErrUnparsable
	}

	candidate := strings.TrimSpace(fenceRe.ReplaceAllString(trimmed, ""))
	if start := strings.Index(candidate, "{"); start > 0 {
		candidate = candidate[start:]
	}

	var rcpt Receipt
	if err := json.Unmarshal([]byte(candidate), &rcpt); err == nil && !rcpt.Empty() {
		return &rcpt, nil
	}

	repaired := repairTruncated(candidate)
	rcpt = Receipt{}
	if err := json.Unmarshal([]byte(repaired), &rcpt); err == nil && !rcpt.Empty() {
		return &rcpt, nil
	}

	if partial := recoverPartial(candidate); !partial.Empty() {
		return partial, nil
	}

	return nil, ErrUnparsable
}

// repairTruncated drops a trailing partial property and appends closers for
// any braces and brackets left open by truncation.
func repairTruncated(s string) string {
	s = trailingPartialRe.ReplaceAllString(s, "")
	s = trailingCommaRe.ReplaceAllString(s, "")

	// String-aware depth scan: braces inside string values must not count.
	var stack []byte
	inString := false
	escape := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escape {
			escape = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escape = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, c)
			}
		case '}', ']':
			if !inString && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			s += "}"
		} else {
			s += "]"
		}
	}
	return s
}

// recoverPartial salvages whatever complete fragments exist: the vendor_info
// object and any line_items entries that carry at least a name and subtotal.
func recoverPartial(s string) *Receipt {
	rcpt := &Receipt{}

	if m := vendorInfoRe.FindStringSubmatch(s); m != nil {
		var vendor VendorInfo
		if err := json.Unmarshal([]byte(m[1]), &vendor); err == nil {
			rcpt.VendorInfo = vendor
		}
	}

	if m := lineItemsRe.FindStringSubmatch(s); m != nil {
		for _, raw := range strings.Split(m[1], "}") {
			raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), ","))
			if !strings.Contains(raw, `"item_name"`) || !strings.Contains(raw, `"subtotal"`) {
				continue
			}
			if !strings.HasSuffix(raw, "}") {
				raw += "}"
			}
			var item LineItem
			if err := json.Unmarshal([]byte(raw), &item); err == nil && item.ItemName != "" {
				rcpt.LineItems = append(rcpt.LineItems, item)
			}
		}
	}

	return rcpt
}
