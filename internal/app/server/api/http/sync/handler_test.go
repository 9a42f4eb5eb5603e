package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"tasksync/internal/domain/sync"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessBatch(ctx context.Context, req sync.BatchRequest) (*sync.BatchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.BatchResponse), args.Error(1)
}

func (m *MockService) GetStatus(ctx context.Context) (*sync.Status, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Status), args.Error(1)
}

func TestHandler_batchSync(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, slog.Default(), nil)

		req := sync.BatchRequest{
			ClientTimestamp: time.Now(),
			Items: []sync.Item{{
				ID:        "entry-1",
				TaskID:    "task-1",
				Operation: sync.OpDelete,
			}},
		}

		svc.On("ProcessBatch", mock.Anything, req).Return(&sync.BatchResponse{
			ProcessedItems: []sync.ProcessedItem{{
				ClientID: "task-1",
				Status:   sync.StatusSuccess,
			}},
		}, nil)

		output, err := h.batchSync(context.Background(), &batchSyncInput{Body: req})
		assert.NoError(t, err)
		assert.Len(t, output.Body.ProcessedItems, 1)
		assert.Equal(t, "task-1", output.Body.ProcessedItems[0].ClientID)
		svc.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, slog.Default(), nil)

		svc.On("ProcessBatch", mock.Anything, mock.Anything).
			Return(nil, errors.New("db down"))

		output, err := h.batchSync(context.Background(), &batchSyncInput{})
		assert.Error(t, err)
		assert.Nil(t, output)
		svc.AssertExpectations(t)
	})
}

func TestHandler_getStatus(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)

	svc.On("GetStatus", mock.Anything).Return(&sync.Status{
		TotalTasks: 3,
		ServerTime: time.Now(),
	}, nil)

	output, err := h.getStatus(context.Background(), &getStatusInput{})
	assert.NoError(t, err)
	assert.Equal(t, 3, output.Body.TotalTasks)
	svc.AssertExpectations(t)
}
