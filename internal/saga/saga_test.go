package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func recorder(log *[]string, name string, fail error) Step {
	return Step{
		Name: name,
		Execute: func(ctx context.Context) error {
			*log = append(*log, "exec:"+name)
			return fail
		},
		Compensate: func(ctx context.Context) error {
			*log = append(*log, "undo:"+name)
			return nil
		},
	}
}

func TestSaga_AllStepsSucceed(t *testing.T) {
	var log []string
	s := New("test", zap.NewNop()).
		AddStep(recorder(&log, "a", nil)).
		AddStep(recorder(&log, "b", nil))

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"exec:a", "exec:b"}, log)
}

func TestSaga_CompensatesInReverseOrder(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	s := New("test", zap.NewNop()).
		AddStep(recorder(&log, "a", nil)).
		AddStep(recorder(&log, "b", nil)).
		AddStep(recorder(&log, "c", boom))

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed at step 'c'")
	assert.Equal(t, []string{"exec:a", "exec:b", "exec:c", "undo:b", "undo:a"}, log)
}

func TestSaga_NilCompensateIsSkipped(t *testing.T) {
	var log []string
	s := New("test", zap.NewNop()).
		AddStep(Step{Name: "a", Execute: func(ctx context.Context) error { return nil }}).
		AddStep(recorder(&log, "b", errors.New("fail")))

	require.Error(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"exec:b"}, log)
}
