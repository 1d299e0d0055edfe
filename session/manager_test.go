package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/contextflow/compaction"
	"github.com/BaSui01/contextflow/summary"
	"github.com/BaSui01/contextflow/types"
)

// unitTokenizer counts one token per message so budgets are exact.
type unitTokenizer struct{}

func (unitTokenizer) CountTokens(text string) (int, error) { return 1, nil }
func (unitTokenizer) CountMessages(msgs []types.Message) (int, error) {
	return len(msgs), nil
}
func (unitTokenizer) Name() string { return "unit" }

func newManager(hardLimit, keepLast int) *Manager {
	engine := compaction.New(unitTokenizer{}, summary.New(nil, false))
	return NewManager(engine, compaction.DefaultPolicy(hardLimit, keepLast), nil)
}

func TestThread_StepCommitsWindow(t *testing.T) {
	t.Parallel()
	mgr := newManager(100, 2)
	thread := mgr.NewThread()
	require.NotEmpty(t, thread.ID())
	assert.Nil(t, thread.Window(), "no window before the first step")

	window, stats, err := thread.Step(context.Background(),
		types.NewHumanMessage("hi"),
		types.NewAssistantMessage("hello"),
	)
	require.NoError(t, err)
	assert.False(t, stats.Compressed)
	assert.Len(t, window, 2)
	assert.Equal(t, 2, thread.HistoryLen())
	assert.Equal(t, window, thread.Window())
}

func TestThread_WindowTriggersCompactionAsItGrows(t *testing.T) {
	t.Parallel()
	mgr := newManager(6, 2)
	thread := mgr.NewThread()

	var compactions int
	for i := 0; i < 10; i++ {
		_, stats, err := thread.Step(context.Background(),
			types.NewHumanMessage(fmt.Sprintf("question %d", i)),
			types.NewAssistantMessage(fmt.Sprintf("answer %d", i)),
		)
		require.NoError(t, err)
		if stats.Compressed {
			compactions++
			assert.LessOrEqual(t, stats.MessagesAfter, 3, "summary + tail")
		}
	}

	assert.Greater(t, compactions, 1, "window growth must re-trigger compaction")
	assert.Equal(t, 20, thread.HistoryLen(), "history is append-only across compactions")

	window := thread.Window()
	require.NotEmpty(t, window)
	assert.Equal(t, "answer 9", window[len(window)-1].Content)
}

func TestThread_AppendToolRecords(t *testing.T) {
	t.Parallel()
	mgr := newManager(3, 1)
	thread := mgr.NewThread()

	for i := 0; i < 3; i++ {
		_, _, err := thread.Step(context.Background(), types.NewHumanMessage(fmt.Sprintf("q%d", i)))
		require.NoError(t, err)
		thread.Append(types.Canonical(types.NewToolMessage("tc", "search", fmt.Sprintf("result %d", i))))
	}

	_, stats, err := thread.Step(context.Background(), types.NewHumanMessage("final"))
	require.NoError(t, err)
	require.True(t, stats.Compressed)

	window := thread.Window()
	var tools []string
	for _, m := range window {
		if m.Role == types.RoleTool {
			tools = append(tools, m.Content)
		}
	}
	assert.Equal(t, []string{"result 0", "result 1", "result 2"}, tools)
}

func TestManager_ThreadsRunInParallel(t *testing.T) {
	t.Parallel()
	mgr := newManager(8, 2)

	var g errgroup.Group
	threads := make([]*Thread, 8)
	for i := range threads {
		threads[i] = mgr.Thread(fmt.Sprintf("thread-%d", i))
	}

	for _, thread := range threads {
		thread := thread
		g.Go(func() error {
			for i := 0; i < 20; i++ {
				if _, _, err := thread.Step(context.Background(),
					types.NewHumanMessage(fmt.Sprintf("q%d", i)),
					types.NewAssistantMessage(fmt.Sprintf("a%d", i)),
				); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, thread := range threads {
		assert.Equal(t, 40, thread.HistoryLen())
	}
}

func TestManager_SameThreadStepsSerialized(t *testing.T) {
	t.Parallel()
	mgr := newManager(8, 2)
	thread := mgr.Thread("shared")

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 25; i++ {
				if _, _, err := thread.Step(context.Background(), types.NewHumanMessage("m")); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// Every step appended exactly one record under the thread lock.
	assert.Equal(t, 100, thread.HistoryLen())
}

func TestManager_ThreadIdentity(t *testing.T) {
	t.Parallel()
	mgr := newManager(100, 2)

	a := mgr.Thread("same")
	b := mgr.Thread("same")
	assert.Same(t, a, b)

	c := mgr.NewThread()
	d := mgr.NewThread()
	assert.NotEqual(t, c.ID(), d.ID())
}

func TestThread_InvalidPolicySurfaces(t *testing.T) {
	t.Parallel()
	engine := compaction.New(unitTokenizer{}, nil)
	mgr := NewManager(engine, compaction.Policy{HardLimitTokens: 0}, nil)

	_, _, err := mgr.NewThread().Step(context.Background(), types.NewHumanMessage("hi"))
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidPolicy, types.GetErrorCode(err))
}
