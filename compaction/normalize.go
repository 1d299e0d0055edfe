package compaction

import "github.com/BaSui01/contextflow/types"

// Normalize maps heterogeneous records into canonical messages.
// Pure: same length and order as the input, never fails, never reorders.
// The role mapping itself lives on types.Record.Normalize.
func Normalize(records []types.Record) []types.Message {
	if records == nil {
		return nil
	}
	msgs := make([]types.Message, len(records))
	for i, r := range records {
		msgs[i] = r.Normalize()
	}
	return msgs
}
