package domain

// Usage is what a finished run consumed and produced.
type Usage struct {
	SourceBytes   int64 `json:"source_bytes"`
	OutputBytes   int64 `json:"output_bytes"`
	Operations    int   `json:"operations"`
	PixelsOut     int64 `json:"pixels_out"`
	ComputeTimeMS int64 `json:"compute_time_ms"`
}
