// Package server provides the HTTP surface over the shared media session.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// OpenRequest is the HTTP request body for opening a source.
type OpenRequest struct {
	// Path is the filesystem path of the source media file.
	Path string `json:"path" validate:"required"`
}

// CompressRequest is the HTTP request body for a scale transform.
// Width and Height take -1 to derive the axis from the source aspect ratio
// and 0 (or omission) to keep the source value.
type CompressRequest struct {
	// OutputPath is the destination file. Relative paths resolve under the output directory.
	OutputPath string `json:"output_path" validate:"required"`
	// Width is the target width, or a sentinel.
	Width int `json:"width" validate:"min=-1,max=16384"`
	// Height is the target height, or a sentinel.
	Height int `json:"height" validate:"min=-1,max=16384"`
	// PushToS3 indicates whether to upload the output to S3.
	PushToS3 bool `json:"push_to_s3"`
}

// CropRequest is the HTTP request body for a crop transform.
type CropRequest struct {
	// OutputPath is the destination file. Relative paths resolve under the output directory.
	OutputPath string `json:"output_path" validate:"required"`
	X          int    `json:"x" validate:"min=0"`
	Y          int    `json:"y" validate:"min=0"`
	Width      int    `json:"width" validate:"required,min=1"`
	Height     int    `json:"height" validate:"required,min=1"`
	// PushToS3 indicates whether to upload the output to S3.
	PushToS3 bool `json:"push_to_s3"`
}

// SessionResponse describes the shared session.
type SessionResponse struct {
	// State is CLOSED, OPENED or RELEASED.
	State      string  `json:"state"`
	SourcePath string  `json:"source_path,omitempty"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Rotation   float64 `json:"rotation"`
}

// TransformResponse is the HTTP response after a successful transform.
type TransformResponse struct {
	// OutputPath is the absolute path of the written file.
	OutputPath string `json:"output_path"`
	// URL is the S3 URL of the output (if push_to_s3=true).
	URL string `json:"url,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
	// EngineCode is the raw media engine status, set for engine failures.
	EngineCode int `json:"engine_code,omitempty"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
