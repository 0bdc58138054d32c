package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/jobwatch/internal/app/history"
	"github.com/slok/jobwatch/internal/log"
	"github.com/slok/jobwatch/internal/model"
	"github.com/slok/jobwatch/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config history.ServiceConfig
		expErr bool
	}{
		"Valid config should create the service.": {
			config: history.ServiceConfig{Repository: &storagemock.MockRepository{}, Logger: log.Noop},
		},
		"Missing repository should fail.": {
			config: history.ServiceConfig{Logger: log.Noop},
			expErr: true,
		},
		"Nil logger should default to noop.": {
			config: history.ServiceConfig{Repository: &storagemock.MockRepository{}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := history.NewService(test.config)
			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestServiceRun(t *testing.T) {
	submittedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	chat := model.OperationChat
	failed := model.TaskStatusFailed
	unknownOp := model.Operation("translate")
	unknownStatus := model.TaskStatus("running")

	records := []model.Record{
		{ID: "02", Operation: model.OperationChat, Prompt: "hi", Status: model.TaskStatusFailed, Error: "boom", SubmittedAt: submittedAt},
		{ID: "01", Operation: model.OperationChat, Prompt: "yo", TaskID: "t1", Status: model.TaskStatusPending, SubmittedAt: submittedAt},
	}

	tests := map[string]struct {
		mock       func(m *storagemock.MockRepository)
		req        history.Request
		expRecords []model.Record
		expErr     bool
	}{
		"Without filters should list everything.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListRecords", context.Background(), model.RecordFilter{}).Once().Return(records, nil)
			},
			req:        history.Request{},
			expRecords: records,
		},
		"Filters should be passed to the journal.": {
			mock: func(m *storagemock.MockRepository) {
				exp := model.RecordFilter{Operation: &chat, Status: &failed, Limit: 1}
				m.On("ListRecords", context.Background(), exp).Once().Return(records[:1], nil)
			},
			req:        history.Request{OperationFilter: &chat, StatusFilter: &failed, Limit: 1},
			expRecords: records[:1],
		},
		"Unknown operations should fail.": {
			mock:   func(m *storagemock.MockRepository) {},
			req:    history.Request{OperationFilter: &unknownOp},
			expErr: true,
		},
		"Unknown statuses should fail.": {
			mock:   func(m *storagemock.MockRepository) {},
			req:    history.Request{StatusFilter: &unknownStatus},
			expErr: true,
		},
		"Negative limits should fail.": {
			mock:   func(m *storagemock.MockRepository) {},
			req:    history.Request{Limit: -1},
			expErr: true,
		},
		"Journal errors should propagate.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListRecords", context.Background(), model.RecordFilter{}).Once().Return(nil, fmt.Errorf("database error"))
			},
			req:    history.Request{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := storagemock.NewMockRepository(t)
			test.mock(m)

			svc, err := history.NewService(history.ServiceConfig{Repository: m, Logger: log.Noop})
			require.NoError(err)

			got, err := svc.Run(context.Background(), test.req)
			if test.expErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(test.expRecords, got)
		})
	}
}
