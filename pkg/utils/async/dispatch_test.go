package async_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/theus-ai/omfetch/pkg/utils/async"
)

func TestDispatch_RunsHandler(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	ran := false
	async.Dispatch(context.Background(), func(ctx context.Context) error {
		ran = true
		wg.Done()
		return nil
	})

	wg.Wait()
	if !ran {
		t.Error("handler did not run")
	}
}

func TestDispatch_SurvivesCancelledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var wg sync.WaitGroup
	wg.Add(1)

	async.Dispatch(ctx, func(ctx context.Context) error {
		defer wg.Done()
		if ctx.Err() != nil {
			t.Error("dispatched context must not inherit cancellation")
		}
		return nil
	})

	wg.Wait()
}

func TestDispatch_RecoversPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	async.Dispatch(context.Background(), func(ctx context.Context) error {
		defer wg.Done()
		panic("boom")
	})

	wg.Wait()
	// Reaching here without crashing the test binary is the assertion
}

func TestDispatch_LogsHandlerError(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	async.Dispatch(context.Background(), func(ctx context.Context) error {
		defer wg.Done()
		return goerr.New("handler failed")
	})

	wg.Wait()
}
