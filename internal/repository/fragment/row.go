package fragment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	domfrag "github.com/kailas-cloud/coach/internal/domain/fragment"
)

// Row is the persisted layout of one fragment, shared by the parquet files
// and the hash records written by the importer. Metadata is a JSON object.
type Row struct {
	Content  string `parquet:"content"`
	Source   string `parquet:"source"`
	Page     string `parquet:"page"`
	Metadata string `parquet:"metadata"`
}

// ReadFile reads all fragment rows from a parquet file.
func ReadFile(path string) ([]Row, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}

// WriteFile writes fragment rows to a parquet file.
func WriteFile(path string, rows []Row) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}

// decodeMetadata flattens a JSON object into string values.
// Invalid or empty input yields an empty map.
func decodeMetadata(raw string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return out
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return out
	}
	for k, v := range m {
		out[k] = stringify(v)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// toFragments converts rows of kb into fragments, drops rows that do not
// mention kb anywhere in their metadata and numbers the rest from 1.
func toFragments(kb string, rows []Row) (kept []domfrag.Fragment, dropped int) {
	kept = make([]domfrag.Fragment, 0, len(rows))
	for _, row := range rows {
		md := decodeMetadata(row.Metadata)
		f := domfrag.Fragment{
			Body:          validUTF8(row.Content),
			Source:        firstNonEmpty(validUTF8(row.Source), md["source"]),
			Page:          firstNonEmpty(validUTF8(row.Page), md["page"], domfrag.UnknownPage),
			KnowledgeBase: kb,
			Metadata:      md,
		}
		if !f.MentionsKnowledgeBase(kb) {
			dropped++
			continue
		}
		kept = append(kept, f)
	}
	domfrag.Renumber(kept)
	return kept, dropped
}

// validUTF8 replaces invalid byte sequences the way encoding/json does,
// so a fragment reads the same fresh and after a cache round trip.
// Metadata needs no pass: decodeMetadata goes through encoding/json already.
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
