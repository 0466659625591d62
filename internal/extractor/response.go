// Package extractor turns raw LLM completions into entity lists matched
// against the document-type templates. Shared by all provider adapters.
package extractor

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
)

var (
	codeFenceRe     = regexp.MustCompile("(?s)```(?:json)?\n?|```")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// CleanResponse parses a raw model completion into a flat lower-cased
// key/value map. Malformed JSON goes through a repair pass, then a
// line-by-line fallback; a payload that survives neither yields an empty
// map, never an error — a page with an unreadable extraction must not
// abort its siblings.
func CleanResponse(raw string) map[string]string {
	stripped := strings.TrimSpace(codeFenceRe.ReplaceAllString(raw, ""))
	if stripped == "" {
		return map[string]string{}
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(stripped), &parsed); err != nil {
		log.Printf("extractor: model payload is not valid JSON (%v), attempting repair", err)
		repaired := repairJSON(stripped)
		if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
			return parseLines(stripped)
		}
	}

	flat := make(map[string]string)
	flatten(parsed, "", flat)
	return flat
}

// repairJSON fixes the malformations models produce most often: trailing
// commas and embedded control characters.
func repairJSON(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = controlCharRe.ReplaceAllString(s, "")
	return s
}

// parseLines is the last-resort "key: value" line scanner.
func parseLines(s string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(s, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.Trim(strings.TrimSpace(key), `"`))
		value = strings.Trim(strings.TrimSpace(value), `",`)
		if key != "" && value != "" {
			out[key] = value
		}
	}
	if len(out) > 0 {
		log.Printf("extractor: recovered %d fields with line-by-line fallback", len(out))
	}
	return out
}

// flatten recursively collapses nested objects and arrays into flat
// lower-cased keys joined with underscores. Scalar arrays become one
// comma-joined value; object arrays are indexed.
func flatten(value interface{}, prefix string, out map[string]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		for k, child := range v {
			key := strings.ToLower(k)
			if prefix != "" {
				key = prefix + "_" + key
			}
			flatten(child, key, out)
		}
	case []interface{}:
		if allScalar(v) {
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, scalarString(item))
			}
			out[prefix] = strings.Join(parts, ", ")
			return
		}
		for i, item := range v {
			flatten(item, fmt.Sprintf("%s%d", prefix, i), out)
		}
	default:
		if prefix != "" {
			out[prefix] = scalarString(v)
		}
	}
}

func allScalar(items []interface{}) bool {
	for _, item := range items {
		switch item.(type) {
		case map[string]interface{}, []interface{}:
			return false
		}
	}
	return true
}

func scalarString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
