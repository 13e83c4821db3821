package kernel

// queueObj is a fixed-capacity ring buffer of pointer-sized entries (spec
// §3 "Queue"). Head is the next write slot, tail the next read slot,
// mirroring the original's NUSE_Queue_Head/Tail index pair exactly
// (including wrap-at-capacity, not wrap-at-len, since data is
// preallocated to capacity).
type queueObj struct {
	data         []interface{}
	head, tail   int
	items        int
	blockedCount int
}

func (k *Kernel) initQueues() {
	k.queues = make([]*queueObj, len(k.cfg.Queues))
	for i, qc := range k.cfg.Queues {
		k.queues[i] = &queueObj{data: make([]interface{}, qc.Capacity)}
	}
}

func (k *Kernel) checkQueue(queue int) Status {
	if k.cfg.ParameterChecking && (queue < 0 || queue >= len(k.queues)) {
		return StatusInvalidQueue
	}
	return StatusSuccess
}

// QueueSend appends message at the head of queue without blocking.
func (k *Kernel) QueueSend(queue int, message interface{}) Status {
	return k.queueSend(queue, message, NoSuspend, false)
}

// QueueSendSuspend is QueueSend with the caller willing to block until
// room is available.
func (k *Kernel) QueueSendSuspend(queue int, message interface{}) Status {
	return k.queueSend(queue, message, Suspend, false)
}

// QueueJam prepends message at the tail of queue (so it is the very next
// item received) without blocking.
func (k *Kernel) QueueJam(queue int, message interface{}) Status {
	return k.queueSend(queue, message, NoSuspend, true)
}

// QueueJamSuspend is QueueJam with the caller willing to block.
func (k *Kernel) QueueJamSuspend(queue int, message interface{}) Status {
	return k.queueSend(queue, message, Suspend, true)
}

func (k *Kernel) queueSend(queue int, message interface{}, suspend SuspendOption, jam bool) Status {
	if s := k.checkQueue(queue); s != StatusSuccess {
		return s
	}
	if !k.cfg.BlockingEnabled && bool(suspend) {
		return StatusInvalidSuspend
	}

	k.csEnter()
	defer k.csExit()

	q := k.queues[queue]
	for {
		if q.items == len(q.data) {
			if !k.cfg.BlockingEnabled || !bool(suspend) {
				return StatusQueueFull
			}
			q.blockedCount++
			status := k.blockSelfLocked(ClassQueue, queue)
			if status != StatusSuccess {
				return status
			}
			continue
		}
		if jam {
			q.tail = (q.tail - 1 + len(q.data)) % len(q.data)
			q.data[q.tail] = message
		} else {
			q.data[q.head] = message
			q.head = (q.head + 1) % len(q.data)
		}
		q.items++
		if q.blockedCount != 0 {
			k.wakeLowestWaiterLocked(ClassQueue, queue)
		}
		return StatusSuccess
	}
}

// QueueReceive removes and returns the item at the tail of queue without
// blocking.
func (k *Kernel) QueueReceive(queue int) (interface{}, Status) {
	return k.queueReceive(queue, NoSuspend)
}

// QueueReceiveSuspend is QueueReceive with the caller willing to block
// until a message is available.
func (k *Kernel) QueueReceiveSuspend(queue int) (interface{}, Status) {
	return k.queueReceive(queue, Suspend)
}

func (k *Kernel) queueReceive(queue int, suspend SuspendOption) (interface{}, Status) {
	if s := k.checkQueue(queue); s != StatusSuccess {
		return nil, s
	}
	if !k.cfg.BlockingEnabled && bool(suspend) {
		return nil, StatusInvalidSuspend
	}

	k.csEnter()
	defer k.csExit()

	q := k.queues[queue]
	for {
		if q.items == 0 {
			if !k.cfg.BlockingEnabled || !bool(suspend) {
				return nil, StatusQueueEmpty
			}
			q.blockedCount++
			status := k.blockSelfLocked(ClassQueue, queue)
			if status != StatusSuccess {
				return nil, status
			}
			continue
		}
		msg := q.data[q.tail]
		q.data[q.tail] = nil
		q.tail = (q.tail + 1) % len(q.data)
		q.items--
		if q.blockedCount != 0 {
			k.wakeLowestWaiterLocked(ClassQueue, queue)
		}
		return msg, StatusSuccess
	}
}

// QueueReset restores queue to its initialized state; any queued
// messages are lost and every blocked waiter wakes with
// StatusQueueWasReset (spec §4.5).
func (k *Kernel) QueueReset(queue int) Status {
	if s := k.checkQueue(queue); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	q := k.queues[queue]
	for i := range q.data {
		q.data[i] = nil
	}
	q.head, q.tail, q.items = 0, 0, 0

	if k.cfg.BlockingEnabled {
		k.wakeAllWaitersLocked(ClassQueue, queue, StatusQueueWasReset)
	}
	return StatusSuccess
}

// QueueInfo is the information-query result for one queue (spec §6).
type QueueInfo struct {
	Capacity         int
	Available        int
	Messages         int
	TasksWaiting     int
	FirstWaitingTask int
}

func (k *Kernel) QueueInformation(queue int) (QueueInfo, Status) {
	if s := k.checkQueue(queue); s != StatusSuccess {
		return QueueInfo{}, s
	}
	k.csEnter()
	defer k.csExit()

	q := k.queues[queue]
	info := QueueInfo{
		Capacity:  len(q.data),
		Available: len(q.data) - q.items,
		Messages:  q.items,
	}
	if k.cfg.BlockingEnabled {
		info.TasksWaiting = q.blockedCount
		info.FirstWaitingTask = k.firstWaiterLocked(ClassQueue, queue)
	}
	return info, StatusSuccess
}

// QueueCount returns the configured number of queues.
func (k *Kernel) QueueCount() int { return len(k.queues) }
