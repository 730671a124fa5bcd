package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/threebody/internal/dynamo"
)

type ExportData struct {
	Run    RunMetadata       `json:"run"`
	Frames []dynamo.Snapshot `json:"frames"`
}

func ExportJSON(w io.Writer, meta RunMetadata, frames []dynamo.Snapshot) error {
	meta.Frames = len(frames)
	meta.Metrics = finiteMetrics(meta.Metrics)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Frames: frames})
}
