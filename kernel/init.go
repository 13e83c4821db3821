package kernel

// initAll builds every object table in the same order NUSE_Init() calls
// its per-class init routines (nuse_init.c): tasks, partition pools,
// mailboxes, queues, pipes, semaphores, event groups, timers. Kept as a
// single routine, rather than inlined call-by-call in New, so the
// initialization order is named and grounded in one place.
func (k *Kernel) initAll() {
	k.initTasks()
	k.initPartitionPools()
	k.initMailboxes()
	k.initQueues()
	k.initPipes()
	k.initSemaphores()
	k.initEventGroups()
	k.initTimers()
}
