package model

import "fmt"

// Operation is a backend job operation name.
type Operation string

const (
	OperationGenerate      Operation = "generate"
	OperationChat          Operation = "chat"
	OperationMultimodal    Operation = "multimodal"
	OperationSteganography Operation = "steganography"
	OperationSummarize     Operation = "summarize"
)

// SurfaceMode is how an operation shows its outcomes.
type SurfaceMode string

const (
	// SurfaceModeSingleSlot replaces the whole output on every render.
	SurfaceModeSingleSlot SurfaceMode = "single-slot"
	// SurfaceModeTranscript appends entries to an ordered transcript.
	SurfaceModeTranscript SurfaceMode = "transcript"
)

// Request body field names.
const (
	BodyFieldPrompt = "prompt"
	BodyFieldData   = "data"
	BodyFieldImage  = "image"
)

// OperationSpec describes how an operation is submitted and displayed.
type OperationSpec struct {
	Operation Operation
	// Path is the backend endpoint the request is posted to.
	Path string
	// PromptField is the body field carrying the user text.
	PromptField string
	// NeedsImage requires an encoded image attachment on the request.
	NeedsImage bool
	// AllowsInline accepts backend responses that carry the result directly
	// instead of a task identifier.
	AllowsInline bool
	Mode         SurfaceMode
}

var operationSpecs = map[Operation]OperationSpec{
	OperationGenerate: {
		Operation:   OperationGenerate,
		Path:        "/generate",
		PromptField: BodyFieldPrompt,
		Mode:        SurfaceModeSingleSlot,
	},
	OperationChat: {
		Operation:    OperationChat,
		Path:         "/chat",
		PromptField:  BodyFieldPrompt,
		AllowsInline: true,
		Mode:         SurfaceModeTranscript,
	},
	OperationMultimodal: {
		Operation:   OperationMultimodal,
		Path:        "/multimodal",
		PromptField: BodyFieldPrompt,
		NeedsImage:  true,
		Mode:        SurfaceModeSingleSlot,
	},
	OperationSteganography: {
		Operation:   OperationSteganography,
		Path:        "/steganography",
		PromptField: BodyFieldPrompt,
		NeedsImage:  true,
		Mode:        SurfaceModeSingleSlot,
	},
	OperationSummarize: {
		Operation:   OperationSummarize,
		Path:        "/summarize",
		PromptField: BodyFieldData,
		Mode:        SurfaceModeSingleSlot,
	},
}

// Operations returns all the known operations.
func Operations() []Operation {
	return []Operation{
		OperationGenerate,
		OperationChat,
		OperationMultimodal,
		OperationSteganography,
		OperationSummarize,
	}
}

// SpecFor returns the spec of an operation.
func SpecFor(op Operation) (OperationSpec, error) {
	spec, ok := operationSpecs[op]
	if !ok {
		return OperationSpec{}, fmt.Errorf("unknown operation %q: %w", op, ErrNotValid)
	}
	return spec, nil
}

// Body is a request body, all the backend fields are strings.
type Body map[string]string
