package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/jobwatch/internal/model"
)

func TestSpecFor(t *testing.T) {
	tests := map[string]struct {
		op      model.Operation
		expSpec model.OperationSpec
		expErr  bool
	}{
		"Chat should accept inline answers and use a transcript.": {
			op: model.OperationChat,
			expSpec: model.OperationSpec{
				Operation:    model.OperationChat,
				Path:         "/chat",
				PromptField:  "prompt",
				AllowsInline: true,
				Mode:         model.SurfaceModeTranscript,
			},
		},
		"Summarize should send the text as data.": {
			op: model.OperationSummarize,
			expSpec: model.OperationSpec{
				Operation:   model.OperationSummarize,
				Path:        "/summarize",
				PromptField: "data",
				Mode:        model.SurfaceModeSingleSlot,
			},
		},
		"Steganography should require an image.": {
			op: model.OperationSteganography,
			expSpec: model.OperationSpec{
				Operation:   model.OperationSteganography,
				Path:        "/steganography",
				PromptField: "prompt",
				NeedsImage:  true,
				Mode:        model.SurfaceModeSingleSlot,
			},
		},
		"Unknown operations should fail.": {
			op:     model.Operation("translate"),
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			spec, err := model.SpecFor(test.op)
			if test.expErr {
				require.Error(err)
				assert.ErrorIs(err, model.ErrNotValid)
				return
			}
			require.NoError(err)
			assert.Equal(test.expSpec, spec)
		})
	}
}

func TestOperationsHaveSpecs(t *testing.T) {
	for _, op := range model.Operations() {
		_, err := model.SpecFor(op)
		assert.NoError(t, err, op)
	}
}

func TestTaskStatus(t *testing.T) {
	assert := assert.New(t)

	assert.False(model.TaskStatusPending.Terminal())
	assert.True(model.TaskStatusCompleted.Terminal())
	assert.True(model.TaskStatusFailed.Terminal())
	assert.False(model.TaskStatus("running").Terminal())
	assert.False(model.TaskStatus("running").Known())
	assert.True(model.TaskStatusPending.Known())
}
