package kernel

// pipeObj is a fixed-capacity ring buffer of fixed-size byte messages
// (spec §3 "Pipe"). Unlike queueObj it stores entries as distinct
// []byte messages rather than stepping a single byte-offset ring — the
// original steps head/tail by messageSize bytes into one flat buffer;
// here the capacity/message-size split is kept explicit as slice-of-
// slices, which is the idiomatic Go equivalent with the same ring
// semantics (same wrap points, same head/tail/items bookkeeping).
type pipeObj struct {
	messageSize  int
	data         [][]byte
	head, tail   int
	items        int
	blockedCount int
}

func (k *Kernel) initPipes() {
	k.pipes = make([]*pipeObj, len(k.cfg.Pipes))
	for i, pc := range k.cfg.Pipes {
		k.pipes[i] = &pipeObj{
			messageSize: pc.MessageSize,
			data:        make([][]byte, pc.Capacity),
		}
	}
}

func (k *Kernel) checkPipe(pipe int) Status {
	if k.cfg.ParameterChecking && (pipe < 0 || pipe >= len(k.pipes)) {
		return StatusInvalidPipe
	}
	return StatusSuccess
}

func (k *Kernel) checkPipeMessageSize(pipe int, size int) Status {
	if k.cfg.ParameterChecking && size != k.pipes[pipe].messageSize {
		return StatusInvalidSize
	}
	return StatusSuccess
}

// PipeSend appends message at the head of pipe without blocking. len(message)
// must equal the pipe's configured message size.
func (k *Kernel) PipeSend(pipe int, message []byte) Status {
	return k.pipeSend(pipe, message, NoSuspend, false)
}

// PipeSendSuspend is PipeSend with the caller willing to block until room
// is available.
func (k *Kernel) PipeSendSuspend(pipe int, message []byte) Status {
	return k.pipeSend(pipe, message, Suspend, false)
}

// PipeJam prepends message at the tail of pipe without blocking.
func (k *Kernel) PipeJam(pipe int, message []byte) Status {
	return k.pipeSend(pipe, message, NoSuspend, true)
}

// PipeJamSuspend is PipeJam with the caller willing to block.
func (k *Kernel) PipeJamSuspend(pipe int, message []byte) Status {
	return k.pipeSend(pipe, message, Suspend, true)
}

func (k *Kernel) pipeSend(pipe int, message []byte, suspend SuspendOption, jam bool) Status {
	if s := k.checkPipe(pipe); s != StatusSuccess {
		return s
	}
	if s := k.checkPipeMessageSize(pipe, len(message)); s != StatusSuccess {
		return s
	}
	if !k.cfg.BlockingEnabled && bool(suspend) {
		return StatusInvalidSuspend
	}

	k.csEnter()
	defer k.csExit()

	p := k.pipes[pipe]
	for {
		if p.items == len(p.data) {
			if !k.cfg.BlockingEnabled || !bool(suspend) {
				return StatusPipeFull
			}
			p.blockedCount++
			status := k.blockSelfLocked(ClassPipe, pipe)
			if status != StatusSuccess {
				return status
			}
			continue
		}
		entry := make([]byte, p.messageSize)
		copy(entry, message)
		if jam {
			p.tail = (p.tail - 1 + len(p.data)) % len(p.data)
			p.data[p.tail] = entry
		} else {
			p.data[p.head] = entry
			p.head = (p.head + 1) % len(p.data)
		}
		p.items++
		if p.blockedCount != 0 {
			k.wakeLowestWaiterLocked(ClassPipe, pipe)
		}
		return StatusSuccess
	}
}

// PipeReceive removes and returns the message at the tail of pipe
// without blocking. The returned slice is always exactly the pipe's
// configured message size (spec §4.6).
func (k *Kernel) PipeReceive(pipe int) ([]byte, Status) {
	return k.pipeReceive(pipe, NoSuspend)
}

// PipeReceiveSuspend is PipeReceive with the caller willing to block
// until a message is available.
func (k *Kernel) PipeReceiveSuspend(pipe int) ([]byte, Status) {
	return k.pipeReceive(pipe, Suspend)
}

func (k *Kernel) pipeReceive(pipe int, suspend SuspendOption) ([]byte, Status) {
	if s := k.checkPipe(pipe); s != StatusSuccess {
		return nil, s
	}
	if !k.cfg.BlockingEnabled && bool(suspend) {
		return nil, StatusInvalidSuspend
	}

	k.csEnter()
	defer k.csExit()

	p := k.pipes[pipe]
	for {
		if p.items == 0 {
			if !k.cfg.BlockingEnabled || !bool(suspend) {
				return nil, StatusPipeEmpty
			}
			p.blockedCount++
			status := k.blockSelfLocked(ClassPipe, pipe)
			if status != StatusSuccess {
				return nil, status
			}
			continue
		}
		msg := p.data[p.tail]
		p.data[p.tail] = nil
		p.tail = (p.tail + 1) % len(p.data)
		p.items--
		if p.blockedCount != 0 {
			k.wakeLowestWaiterLocked(ClassPipe, pipe)
		}
		return msg, StatusSuccess
	}
}

// PipeReset restores pipe to its initialized state; any queued messages
// are lost and every blocked waiter wakes with StatusPipeWasReset (spec
// §4.6).
func (k *Kernel) PipeReset(pipe int) Status {
	if s := k.checkPipe(pipe); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	p := k.pipes[pipe]
	for i := range p.data {
		p.data[i] = nil
	}
	p.head, p.tail, p.items = 0, 0, 0

	if k.cfg.BlockingEnabled {
		k.wakeAllWaitersLocked(ClassPipe, pipe, StatusPipeWasReset)
	}
	return StatusSuccess
}

// PipeInfo is the information-query result for one pipe (spec §6).
type PipeInfo struct {
	Capacity         int
	MessageSize      int
	Available        int
	Messages         int
	TasksWaiting     int
	FirstWaitingTask int
}

func (k *Kernel) PipeInformation(pipe int) (PipeInfo, Status) {
	if s := k.checkPipe(pipe); s != StatusSuccess {
		return PipeInfo{}, s
	}
	k.csEnter()
	defer k.csExit()

	p := k.pipes[pipe]
	info := PipeInfo{
		Capacity:    len(p.data),
		MessageSize: p.messageSize,
		Available:   len(p.data) - p.items,
		Messages:    p.items,
	}
	if k.cfg.BlockingEnabled {
		info.TasksWaiting = p.blockedCount
		info.FirstWaitingTask = k.firstWaiterLocked(ClassPipe, pipe)
	}
	return info, StatusSuccess
}

// PipeCount returns the configured number of pipes.
func (k *Kernel) PipeCount() int { return len(k.pipes) }
