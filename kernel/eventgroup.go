package kernel

// eventGroupObj holds an 8-bit flag pattern shared by every task that
// sets or retrieves it (spec §3 "Event Group").
type eventGroupObj struct {
	flags        uint8
	blockedCount int
}

func (k *Kernel) initEventGroups() {
	k.eventGroups = make([]*eventGroupObj, k.cfg.EventGroups)
	for i := range k.eventGroups {
		k.eventGroups[i] = &eventGroupObj{}
	}
}

func (k *Kernel) checkEventGroup(group int) Status {
	if k.cfg.ParameterChecking && (group < 0 || group >= len(k.eventGroups)) {
		return StatusInvalidGroup
	}
	return StatusSuccess
}

func checkEventOp(op EventOp) Status {
	if op != EventOr && op != EventAnd {
		return StatusInvalidOperation
	}
	return StatusSuccess
}

// EventGroupSet ORs (EventOr) or ANDs (EventAnd) eventFlags into group,
// then wakes every task waiting on it (spec §4.8) — a retrieve can only
// ever be satisfied by a set, so unlike mailbox/queue/etc. there is no
// wake-one shortcut: every waiter re-evaluates its own requested pattern
// against the new flags once woken.
//
// The original falls through and performs the set/clear even when
// operation fails parameter checking (its early-return path is only
// wired for NUSE_INVALID_GROUP, not NUSE_INVALID_OPERATION) — unlike
// Event_Group_Retrieve, which does return immediately. That asymmetry
// reads as an oversight rather than intended behavior, so this port
// returns StatusInvalidOperation immediately, matching Retrieve.
func (k *Kernel) EventGroupSet(group int, eventFlags uint8, operation EventOp) Status {
	if s := k.checkEventGroup(group); s != StatusSuccess {
		return s
	}
	if s := checkEventOp(operation); s != StatusSuccess {
		return s
	}

	k.csEnter()
	defer k.csExit()

	g := k.eventGroups[group]
	if operation == EventOr {
		g.flags |= eventFlags
	} else {
		g.flags &= eventFlags
	}

	if k.cfg.BlockingEnabled {
		k.wakeAllWaitersLocked(ClassEventGroup, group, StatusSuccess)
	}
	return StatusSuccess
}

// EventGroupRetrieve tests requestedEvents against group's current flags
// without blocking: EventOr succeeds if any requested bit is set,
// EventAnd succeeds only if every requested bit is set. On success it
// returns the masked flags that were actually present.
func (k *Kernel) EventGroupRetrieve(group int, requestedEvents uint8, operation EventOp) (uint8, Status) {
	return k.eventGroupRetrieve(group, requestedEvents, operation, NoSuspend)
}

// EventGroupRetrieveSuspend is EventGroupRetrieve with the caller
// willing to block until the requested pattern is satisfied.
func (k *Kernel) EventGroupRetrieveSuspend(group int, requestedEvents uint8, operation EventOp) (uint8, Status) {
	return k.eventGroupRetrieve(group, requestedEvents, operation, Suspend)
}

func (k *Kernel) eventGroupRetrieve(group int, requestedEvents uint8, operation EventOp, suspend SuspendOption) (uint8, Status) {
	if s := k.checkEventGroup(group); s != StatusSuccess {
		return 0, s
	}
	if s := checkEventOp(operation); s != StatusSuccess {
		return 0, s
	}
	if !k.cfg.BlockingEnabled && bool(suspend) {
		return 0, StatusInvalidSuspend
	}

	k.csEnter()
	defer k.csExit()

	g := k.eventGroups[group]
	for {
		matched := g.flags & requestedEvents
		var satisfied bool
		if operation == EventOr {
			satisfied = matched != 0
		} else {
			satisfied = matched == requestedEvents
		}
		if satisfied {
			return matched, StatusSuccess
		}
		if !k.cfg.BlockingEnabled || !bool(suspend) {
			return 0, StatusNotPresent
		}
		g.blockedCount++
		status := k.blockSelfLocked(ClassEventGroup, group)
		if status != StatusSuccess {
			return 0, status
		}
	}
}

// EventGroupInfo is the information-query result for one event group
// (spec §6).
type EventGroupInfo struct {
	EventFlags       uint8
	TasksWaiting     int
	FirstWaitingTask int
}

func (k *Kernel) EventGroupInformation(group int) (EventGroupInfo, Status) {
	if s := k.checkEventGroup(group); s != StatusSuccess {
		return EventGroupInfo{}, s
	}
	k.csEnter()
	defer k.csExit()

	g := k.eventGroups[group]
	info := EventGroupInfo{EventFlags: g.flags}
	if k.cfg.BlockingEnabled {
		info.TasksWaiting = g.blockedCount
		info.FirstWaitingTask = k.firstWaiterLocked(ClassEventGroup, group)
	}
	return info, StatusSuccess
}

// EventGroupCount returns the configured number of event groups.
func (k *Kernel) EventGroupCount() int { return len(k.eventGroups) }
