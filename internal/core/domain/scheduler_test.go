package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.Len(t, config.TaskConfigs, 2)

	flushCfg := config.TaskConfigs[TaskIDIndexFlush]
	assert.True(t, flushCfg.Enabled)
	assert.Equal(t, 5*time.Minute, flushCfg.Interval)

	reconcileCfg := config.TaskConfigs[TaskIDReconcile]
	assert.False(t, reconcileCfg.Enabled, "reconciliation is opt-in")
	assert.Equal(t, 30*time.Minute, reconcileCfg.Interval)
}

func TestSchedulerConfigFrom(t *testing.T) {
	config := SchedulerConfigFrom(SchedulerSettings{
		ReconcileEnabled:  true,
		ReconcileInterval: time.Minute,
		FlushInterval:     0,
	})

	assert.True(t, config.GetTaskConfig(TaskIDReconcile).Enabled)
	assert.Equal(t, time.Minute, config.GetTaskConfig(TaskIDReconcile).Interval)
	assert.False(t, config.GetTaskConfig(TaskIDIndexFlush).Enabled)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	config := SchedulerConfig{
		Enabled:     true,
		TaskConfigs: nil,
	}

	cfg := config.GetTaskConfig("any-task")
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Duration(0), cfg.Interval)
}

func TestScheduledTask_IsDue(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		task ScheduledTask
		want bool
	}{
		{"disabled never due", ScheduledTask{Enabled: false}, false},
		{"zero next run is due", ScheduledTask{Enabled: true}, true},
		{"past next run is due", ScheduledTask{Enabled: true, NextRun: now.Add(-time.Second)}, true},
		{"exactly now is due", ScheduledTask{Enabled: true, NextRun: now}, true},
		{"future not due", ScheduledTask{Enabled: true, NextRun: now.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsDue(now))
		})
	}
}

func TestTaskNames(t *testing.T) {
	assert.Equal(t, "Index Flush", TaskNames[TaskIDIndexFlush])
	assert.Equal(t, "Vectorization Reconcile", TaskNames[TaskIDReconcile])
}
