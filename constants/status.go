package constants

// FailureStage names the step of the batch pipeline that rejected an input.
type FailureStage string

// Stable values (surfaced to API clients as-is).
const (
	StageRead       FailureStage = "READ"       // upload could not be read or has an unsupported kind
	StagePrepare    FailureStage = "PREPARE"    // image could not be decoded/resized
	StageRasterize  FailureStage = "RASTERIZE"  // pdf could not be split into pages
	StageExtraction FailureStage = "EXTRACTION" // model call failed or reply was undecodable
)
