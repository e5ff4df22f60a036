package jobs_test

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/mango-catalog/internal/config"
	"github.com/vrsandeep/mango-catalog/internal/jobs"
	"github.com/vrsandeep/mango-catalog/internal/websocket"
)

type fakeJobContext struct {
	db     *sql.DB
	cfg    *config.Config
	jobMgr *jobs.JobManager
}

func (f *fakeJobContext) DB() *sql.DB                  { return f.db }
func (f *fakeJobContext) Config() *config.Config       { return f.cfg }
func (f *fakeJobContext) JobManager() *jobs.JobManager { return f.jobMgr }
func (f *fakeJobContext) WsHub() *websocket.Hub        { return nil }

func newFakeContext() *fakeJobContext {
	ctx := &fakeJobContext{cfg: config.Default()}
	ctx.jobMgr = jobs.NewManager(ctx)
	return ctx
}

// waitForStatus polls until the job reaches the wanted status.
func waitForStatus(t *testing.T, mgr *jobs.JobManager, id, want string) *jobs.JobStatus {
	t.Helper()
	var last *jobs.JobStatus
	require.Eventually(t, func() bool {
		for _, s := range mgr.GetStatus() {
			if s.ID == id {
				last = s
				return s.Status == want
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	return last
}

func TestManager_NewManager(t *testing.T) {
	ctx := newFakeContext()
	assert.NotNil(t, ctx.jobMgr)
	assert.Empty(t, ctx.jobMgr.GetStatus())
}

func TestManager_RegisterAndGetStatus(t *testing.T) {
	mgr := newFakeContext().jobMgr
	mgr.Register("jobB", "Job B", func(ctx jobs.JobContext) {})
	mgr.Register("jobA", "Job A", func(ctx jobs.JobContext) {})
	statuses := mgr.GetStatus()
	require.Len(t, statuses, 2)
	assert.Equal(t, "jobA", statuses[0].ID)
	assert.Equal(t, "Job B", statuses[1].Name)
	assert.Equal(t, "idle", statuses[0].Status)
}

func TestManager_RunJob_SuccessAndStatus(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	called := make(chan struct{})
	mgr.Register("jobX", "Job X", func(ctx jobs.JobContext) { close(called) })

	require.NoError(t, mgr.RunJob("jobX", ctx))
	<-called
	status := waitForStatus(t, mgr, "jobX", "success")
	assert.Equal(t, float64(100), status.Progress)
	assert.False(t, mgr.IsRunning())
}

func TestManager_RunJob_NilContextUsesApp(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	got := make(chan jobs.JobContext, 1)
	mgr.Register("jobN", "Job N", func(c jobs.JobContext) { got <- c })

	require.NoError(t, mgr.RunJob("jobN", nil))
	assert.Same(t, ctx, <-got)
}

func TestManager_RunJob_AlreadyRunning(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	block := make(chan struct{})
	mgr.Register("jobY", "Job Y", func(ctx jobs.JobContext) { <-block })
	require.NoError(t, mgr.RunJob("jobY", ctx))
	assert.True(t, mgr.IsRunning())
	assert.ErrorIs(t, mgr.RunJob("jobY", ctx), jobs.ErrJobRunning)
	close(block)
	waitForStatus(t, mgr, "jobY", "success")
}

func TestManager_RunJob_NotFound(t *testing.T) {
	ctx := newFakeContext()
	assert.ErrorIs(t, ctx.jobMgr.RunJob("nojob", ctx), jobs.ErrJobNotFound)
}

func TestManager_RunJob_Panic(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	mgr.Register("panicJob", "Panic Job", func(ctx jobs.JobContext) { panic("fail") })
	require.NoError(t, mgr.RunJob("panicJob", ctx))
	status := waitForStatus(t, mgr, "panicJob", "failed")
	assert.Contains(t, status.Message, "panicked")
	assert.False(t, mgr.IsRunning())
}

func TestManager_ProgressAndFail(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	release := make(chan struct{})
	reported := make(chan struct{})
	mgr.Register("jobP", "Job P", func(c jobs.JobContext) {
		c.JobManager().UpdateProgress("jobP", "Processing 1/2: a.cbz", 50)
		close(reported)
		<-release
		c.JobManager().Fail("jobP", "export failed")
	})

	require.NoError(t, mgr.RunJob("jobP", ctx))
	<-reported
	status := mgr.GetStatus()[0]
	assert.Equal(t, "Processing 1/2: a.cbz", status.Message)
	assert.Equal(t, float64(50), status.Progress)

	close(release)
	status = waitForStatus(t, mgr, "jobP", "failed")
	assert.Equal(t, "export failed", status.Message)
}

func TestManager_Concurrency(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	var mu sync.Mutex
	var count int
	block := make(chan struct{})
	mgr.Register("jobC", "Job C", func(ctx jobs.JobContext) {
		mu.Lock()
		count++
		mu.Unlock()
		<-block
	})
	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			_ = mgr.RunJob("jobC", ctx)
			wg.Done()
		}()
	}
	wg.Wait()
	close(block)
	waitForStatus(t, mgr, "jobC", "success")
	mu.Lock()
	assert.Equal(t, 1, count, "job should only run once concurrently")
	mu.Unlock()
}
