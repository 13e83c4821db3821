package kernel

import "testing"

func validTaskConfig(n int) []TaskConfig {
	tasks := make([]TaskConfig, n)
	for i := range tasks {
		tasks[i] = TaskConfig{Entry: func(k *Kernel, self int) {}}
	}
	return tasks
}

func TestConfigValidateTaskCount(t *testing.T) {
	cases := []struct {
		name    string
		tasks   []TaskConfig
		wantErr bool
	}{
		{"zero tasks", nil, true},
		{"one task", validTaskConfig(1), false},
		{"sixteen tasks", validTaskConfig(16), false},
		{"seventeen tasks", validTaskConfig(17), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Config{Scheduler: SchedulerRunToCompletion, Tasks: c.tasks}
			err := cfg.Validate()
			if (err != nil) != c.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestConfigValidateNilEntry(t *testing.T) {
	cfg := Config{
		Scheduler: SchedulerRunToCompletion,
		Tasks:     []TaskConfig{{}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for nil task entry")
	}
}

func TestConfigValidateSchedulerBlockingCrossChecks(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "rtc forbids blocking",
			cfg:     Config{Scheduler: SchedulerRunToCompletion, BlockingEnabled: true, Tasks: validTaskConfig(1)},
			wantErr: true,
		},
		{
			name:    "priority requires blocking",
			cfg:     Config{Scheduler: SchedulerPriority, BlockingEnabled: false, Tasks: validTaskConfig(1)},
			wantErr: true,
		},
		{
			name:    "priority with blocking ok",
			cfg:     Config{Scheduler: SchedulerPriority, BlockingEnabled: true, Tasks: validTaskConfig(1)},
			wantErr: false,
		},
		{
			name:    "time slice requires positive ticks",
			cfg:     Config{Scheduler: SchedulerTimeSlice, BlockingEnabled: true, TimeSliceTicks: 0, Tasks: validTaskConfig(1)},
			wantErr: true,
		},
		{
			name:    "round robin has no extra constraint",
			cfg:     Config{Scheduler: SchedulerRoundRobin, BlockingEnabled: true, Tasks: validTaskConfig(1)},
			wantErr: false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if (err != nil) != c.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestConfigValidateObjectCeilings(t *testing.T) {
	base := func() Config {
		return Config{Scheduler: SchedulerRunToCompletion, Tasks: validTaskConfig(1)}
	}

	t.Run("mailbox count over ceiling", func(t *testing.T) {
		cfg := base()
		cfg.Mailboxes = 17
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("semaphore initial out of range", func(t *testing.T) {
		cfg := base()
		cfg.Semaphores = []SemaphoreConfig{{Initial: 256}}
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("pipe with zero message size", func(t *testing.T) {
		cfg := base()
		cfg.Pipes = []PipeConfig{{Capacity: 4, MessageSize: 0}}
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("timer auto-enabled with zero initial", func(t *testing.T) {
		cfg := base()
		cfg.Timers = []TimerConfig{{AutoEnable: true, Initial: 0}}
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("well formed config", func(t *testing.T) {
		cfg := base()
		cfg.PartitionPools = []PartitionPoolConfig{{Partitions: 4, PartitionSize: 8}}
		cfg.Queues = []QueueConfig{{Capacity: 4}}
		cfg.Pipes = []PipeConfig{{Capacity: 4, MessageSize: 4}}
		cfg.Semaphores = []SemaphoreConfig{{Initial: 1}}
		cfg.EventGroups = 2
		cfg.Timers = []TimerConfig{{AutoEnable: true, Initial: 5, Reschedule: 5}}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
