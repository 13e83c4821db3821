// Package luabind scripts a kernel.Config and its task entry points from a
// Lua file, the way the teacher embeds gopher-lua to script its virtual
// machine. The Config Matrix itself stays a plain Go struct (kernel.Config);
// Lua's only job is to assemble one before kernel.New is called, and to
// supply each task's entry point as a Lua function invoked through a small
// runtime binding.
package luabind

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nuse-go/nuse/kernel"
)

// Scenario is a loaded scenario file: the Config it assembled plus the
// Lua state the task entry points still close over. Callers must call
// Close once the kernel built from Config has finished running.
type Scenario struct {
	Config kernel.Config
	L      *lua.LState
}

// Close releases the underlying Lua state.
func (s *Scenario) Close() {
	s.L.Close()
}

// Load runs the scenario file at path and builds the Config it declares.
// The script is expected to set a set of recognized globals; see
// scenarios/priority.lua and scenarios/rtc.lua for worked examples.
func Load(path string) (*Scenario, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("luabind: running %s: %w", path, err)
	}

	cfg, err := buildConfig(L)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("luabind: %s: %w", path, err)
	}

	return &Scenario{Config: cfg, L: L}, nil
}

func buildConfig(L *lua.LState) (kernel.Config, error) {
	var cfg kernel.Config

	sched, err := optScheduler(L, "scheduler", kernel.SchedulerRunToCompletion)
	if err != nil {
		return cfg, err
	}
	cfg.Scheduler = sched

	cfg.ParameterChecking = optBool(L, "param_checking", true)
	cfg.BlockingEnabled = optBool(L, "blocking", false)
	cfg.SystemClockEnabled = optBool(L, "system_clock", false)
	cfg.TaskSleepEnabled = optBool(L, "task_sleep", false)
	cfg.TimeSliceTicks = uint32(optInt(L, "time_slice_ticks", 0))

	tasks, err := tasksFromGlobal(L, "tasks")
	if err != nil {
		return cfg, err
	}
	cfg.Tasks = tasks

	cfg.PartitionPools = partitionPoolsFromGlobal(L, "partition_pools")
	cfg.Mailboxes = optInt(L, "mailboxes", 0)
	cfg.Queues = queuesFromGlobal(L, "queues")
	cfg.Pipes = pipesFromGlobal(L, "pipes")
	cfg.Semaphores = semaphoresFromGlobal(L, "semaphores")
	cfg.EventGroups = optInt(L, "event_groups", 0)
	cfg.Timers = timersFromGlobal(L, "timers")

	return cfg, nil
}

func optBool(L *lua.LState, name string, def bool) bool {
	v := L.GetGlobal(name)
	if v == lua.LNil {
		return def
	}
	return lua.LVAsBool(v)
}

func optInt(L *lua.LState, name string, def int) int {
	v := L.GetGlobal(name)
	n, ok := v.(lua.LNumber)
	if !ok {
		return def
	}
	return int(n)
}

func optScheduler(L *lua.LState, name string, def kernel.SchedulerKind) (kernel.SchedulerKind, error) {
	v := L.GetGlobal(name)
	s, ok := v.(lua.LString)
	if !ok {
		return def, nil
	}
	switch string(s) {
	case "rtc", "run_to_completion":
		return kernel.SchedulerRunToCompletion, nil
	case "round_robin":
		return kernel.SchedulerRoundRobin, nil
	case "time_slice":
		return kernel.SchedulerTimeSlice, nil
	case "priority":
		return kernel.SchedulerPriority, nil
	default:
		return def, fmt.Errorf("unknown scheduler %q", string(s))
	}
}

func tasksFromGlobal(L *lua.LState, name string) ([]kernel.TaskConfig, error) {
	tbl, ok := L.GetGlobal(name).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("global %q must be a table of task functions", name)
	}
	var tasks []kernel.TaskConfig
	n := tbl.Len()
	for i := 1; i <= n; i++ {
		fn, ok := tbl.RawGetInt(i).(*lua.LFunction)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not a function", name, i)
		}
		tasks = append(tasks, kernel.TaskConfig{Entry: wrapTask(L, fn)})
	}
	return tasks, nil
}

// wrapTask adapts a Lua function into a kernel.TaskEntry. Every task in a
// scenario shares the same *lua.LState; the kernel's scheduler guarantees
// at most one task's entry point ever executes at a time (switchToLocked's
// baton handoff), so calling back into the shared LState from whichever
// task goroutine currently holds the CPU never races another call into it.
func wrapTask(L *lua.LState, fn *lua.LFunction) kernel.TaskEntry {
	return func(k *kernel.Kernel, self int) {
		bindRuntime(L, k)
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LNumber(self)); err != nil {
			panic(fmt.Errorf("luabind: task %d: %w", self, err))
		}
	}
}

func partitionPoolsFromGlobal(L *lua.LState, name string) []kernel.PartitionPoolConfig {
	tbl, ok := L.GetGlobal(name).(*lua.LTable)
	if !ok {
		return nil
	}
	var pools []kernel.PartitionPoolConfig
	tbl.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		pools = append(pools, kernel.PartitionPoolConfig{
			Partitions:    int(lua.LVAsNumber(row.RawGetString("partitions"))),
			PartitionSize: int(lua.LVAsNumber(row.RawGetString("partition_size"))),
		})
	})
	return pools
}

func queuesFromGlobal(L *lua.LState, name string) []kernel.QueueConfig {
	tbl, ok := L.GetGlobal(name).(*lua.LTable)
	if !ok {
		return nil
	}
	var queues []kernel.QueueConfig
	tbl.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		queues = append(queues, kernel.QueueConfig{
			Capacity: int(lua.LVAsNumber(row.RawGetString("capacity"))),
		})
	})
	return queues
}

func pipesFromGlobal(L *lua.LState, name string) []kernel.PipeConfig {
	tbl, ok := L.GetGlobal(name).(*lua.LTable)
	if !ok {
		return nil
	}
	var pipes []kernel.PipeConfig
	tbl.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		pipes = append(pipes, kernel.PipeConfig{
			Capacity:    int(lua.LVAsNumber(row.RawGetString("capacity"))),
			MessageSize: int(lua.LVAsNumber(row.RawGetString("message_size"))),
		})
	})
	return pipes
}

func semaphoresFromGlobal(L *lua.LState, name string) []kernel.SemaphoreConfig {
	tbl, ok := L.GetGlobal(name).(*lua.LTable)
	if !ok {
		return nil
	}
	var sems []kernel.SemaphoreConfig
	tbl.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		sems = append(sems, kernel.SemaphoreConfig{
			Initial: int(lua.LVAsNumber(row.RawGetString("initial"))),
		})
	})
	return sems
}

// timersFromGlobal builds each configured timer's OnExpire callback
// declaratively from an on_expire_signal = {task=N, mask=M} sub-table,
// rather than letting a timer close over a Lua function. Timer callbacks
// run from the tick service's own goroutine (tick.go's tickOnce), never
// from a task goroutine, so a callback that called back into L would
// race whichever task goroutine is mid-script — gopher-lua's LState is
// not safe for concurrent use, unlike wrapTask's callback, which only
// ever runs on the one task goroutine holding the CPU at a time. Routing
// the only thing a scenario's timers need to do (wake a task) through a
// plain Go closure over k.SignalsSend sidesteps the shared VM entirely.
func timersFromGlobal(L *lua.LState, name string) []kernel.TimerConfig {
	tbl, ok := L.GetGlobal(name).(*lua.LTable)
	if !ok {
		return nil
	}
	var timers []kernel.TimerConfig
	tbl.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		tc := kernel.TimerConfig{
			AutoEnable: lua.LVAsBool(row.RawGetString("auto_enable")),
			Initial:    uint32(lua.LVAsNumber(row.RawGetString("initial"))),
			Reschedule: uint32(lua.LVAsNumber(row.RawGetString("reschedule"))),
		}
		if sig, ok := row.RawGetString("on_expire_signal").(*lua.LTable); ok {
			task := int(lua.LVAsNumber(sig.RawGetString("task")))
			mask := uint8(lua.LVAsNumber(sig.RawGetString("mask")))
			tc.OnExpire = func(k *kernel.Kernel, _ int) {
				k.SignalsSend(task, mask)
			}
		}
		timers = append(timers, tc)
	})
	return timers
}

// bindRuntime (re-)registers the kernel service calls a task body may
// invoke as Lua globals bound to k. It is called at the start of every
// task entry invocation rather than once at load time, since each
// invocation's closure needs to capture the concrete *kernel.Kernel New
// produced — the scenario file is parsed before any Kernel exists.
func bindRuntime(L *lua.LState, k *kernel.Kernel) {
	reg := func(name string, fn lua.LGFunction) {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	reg("nuse_sleep", func(L *lua.LState) int {
		k.Sleep(uint16(L.CheckInt(1)))
		return 0
	})
	reg("nuse_relinquish", func(L *lua.LState) int {
		L.Push(lua.LNumber(int(k.Relinquish())))
		return 1
	})
	reg("nuse_checkpoint", func(L *lua.LState) int {
		k.Checkpoint()
		return 0
	})
	reg("nuse_task_suspend", func(L *lua.LState) int {
		L.Push(lua.LNumber(int(k.TaskSuspend(L.CheckInt(1)))))
		return 1
	})
	reg("nuse_task_resume", func(L *lua.LState) int {
		L.Push(lua.LNumber(int(k.TaskResume(L.CheckInt(1)))))
		return 1
	})
	reg("nuse_signals_send", func(L *lua.LState) int {
		task := L.CheckInt(1)
		flags := uint8(L.CheckInt(2))
		L.Push(lua.LNumber(int(k.SignalsSend(task, flags))))
		return 1
	})
	reg("nuse_signals_receive", func(L *lua.LState) int {
		L.Push(lua.LNumber(int(k.SignalsReceive())))
		return 1
	})
	reg("nuse_timer_control", func(L *lua.LState) int {
		timer := L.CheckInt(1)
		enable := L.CheckBool(2)
		L.Push(lua.LNumber(int(k.TimerControl(timer, enable))))
		return 1
	})
	reg("nuse_queue_send", func(L *lua.LState) int {
		queue := L.CheckInt(1)
		msg := L.CheckAny(2)
		L.Push(lua.LNumber(int(k.QueueSend(queue, toGoValue(msg)))))
		return 1
	})
	reg("nuse_queue_receive", func(L *lua.LState) int {
		queue := L.CheckInt(1)
		msg, status := k.QueueReceive(queue)
		L.Push(fromGoValue(msg))
		L.Push(lua.LNumber(int(status)))
		return 2
	})
	reg("nuse_mailbox_send", func(L *lua.LState) int {
		mailbox := L.CheckInt(1)
		msg := L.CheckAny(2)
		L.Push(lua.LNumber(int(k.MailboxSend(mailbox, toGoValue(msg)))))
		return 1
	})
	reg("nuse_mailbox_receive", func(L *lua.LState) int {
		mailbox := L.CheckInt(1)
		msg, status := k.MailboxReceive(mailbox)
		L.Push(fromGoValue(msg))
		L.Push(lua.LNumber(int(status)))
		return 2
	})
}

// toGoValue and fromGoValue marshal a single Lua value across the kernel
// boundary for queue/mailbox messages, which the kernel stores as
// interface{}. Only numbers and strings are supported — scenarios never
// need to pass richer structures through a mailbox slot.
func toGoValue(v lua.LValue) interface{} {
	switch v := v.(type) {
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	default:
		return nil
	}
}

func fromGoValue(v interface{}) lua.LValue {
	switch v := v.(type) {
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	default:
		return lua.LNil
	}
}
