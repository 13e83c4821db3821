package kernel

// partitionPool is one row of the partition pool table (spec §3 "Partition
// Pool"). Partitions are stored as a single byte slice: each partition is
// prefixed by a one-byte header (0 = free, 0x80|pool = in use), and the
// address handed back to the caller is one byte past the header — exactly
// the original's in-band encoding (spec §4.3), preserved so that
// PartitionDeallocate never needs a pool argument.
type partitionPool struct {
	partitionSize int // payload bytes per partition, header excluded
	data          []byte

	used         int
	blockedCount int
}

func (k *Kernel) initPartitionPools() {
	k.partitionPools = make([]*partitionPool, len(k.cfg.PartitionPools))
	for i, pc := range k.cfg.PartitionPools {
		stride := pc.PartitionSize + 1
		k.partitionPools[i] = &partitionPool{
			partitionSize: pc.PartitionSize,
			data:          make([]byte, stride*pc.Partitions),
		}
	}
}

// partitionHandle identifies a partition by pool and byte offset within
// that pool's data slice (the offset of its header byte). It stands in
// for the original's raw pointer arithmetic: PartitionDeallocate takes
// the pool and offset from the handle and accepts it only if the header
// byte just before offset still carries the in-use marker (high nibble
// 0x8); the pool index stored in the header's low nibble is not compared
// against the handle's pool.
type partitionHandle struct {
	pool   int
	offset int // payload offset within pool.data: one past the header byte
}

func (k *Kernel) checkPartitionPool(pool int) Status {
	if k.cfg.ParameterChecking && (pool < 0 || pool >= len(k.partitionPools)) {
		return StatusInvalidPool
	}
	return StatusSuccess
}

// PartitionAllocate allocates a partition from pool (spec §4.3). On
// success it returns a handle identifying the partition; pass it to
// PartitionDeallocate to free it.
func (k *Kernel) PartitionAllocate(pool int, suspend SuspendOption) (partitionHandle, Status) {
	if s := k.checkPartitionPool(pool); s != StatusSuccess {
		return partitionHandle{}, s
	}
	if !k.cfg.BlockingEnabled && bool(suspend) {
		return partitionHandle{}, StatusInvalidSuspend
	}

	k.csEnter()
	defer k.csExit()

	p := k.partitionPools[pool]
	for {
		if off, ok := p.firstFreeLocked(); ok {
			p.data[off] = 0x80 | byte(pool)
			p.used++
			return partitionHandle{pool: pool, offset: off + 1}, StatusSuccess
		}
		if !k.cfg.BlockingEnabled || !bool(suspend) {
			return partitionHandle{}, StatusNoPartition
		}
		p.blockedCount++
		status := k.blockSelfLocked(ClassPartitionPool, pool)
		if status != StatusSuccess {
			return partitionHandle{}, status
		}
		// woken: loop and retry the scan (another allocator may have
		// raced us between wake and reacquiring the CS).
	}
}

// firstFreeLocked linear-scans partition headers in address (pool-array)
// order — deliberately not priority or wake order (spec Open Question 2,
// preserved as specified).
func (p *partitionPool) firstFreeLocked() (int, bool) {
	stride := p.partitionSize + 1
	for off := 0; off < len(p.data); off += stride {
		if p.data[off] == 0 {
			return off, true
		}
	}
	return 0, false
}

// PartitionDeallocate frees the partition identified by h. The handle's
// pool and offset stand in for the original's pointer-minus-one header
// read; a handle that does not name a currently-allocated partition (the
// zero value, or one already freed) fails with StatusInvalidPointer.
func (k *Kernel) PartitionDeallocate(h partitionHandle) Status {
	if k.cfg.ParameterChecking && h.offset == 0 {
		return StatusInvalidPointer
	}

	k.csEnter()
	defer k.csExit()

	if h.pool < 0 || h.pool >= len(k.partitionPools) {
		return StatusInvalidPointer
	}
	p := k.partitionPools[h.pool]
	headerOff := h.offset - 1
	if headerOff < 0 || headerOff >= len(p.data) || p.data[headerOff]&0xf0 != 0x80 {
		return StatusInvalidPointer
	}

	p.data[headerOff] = 0
	p.used--

	if k.cfg.BlockingEnabled && p.blockedCount != 0 {
		k.wakeLowestWaiterLocked(ClassPartitionPool, h.pool)
	}
	return StatusSuccess
}

// PartitionPoolInfo is the information-query result for one pool (spec
// §6). TasksWaiting/FirstWaitingTask are zero when blocking is compiled
// out.
type PartitionPoolInfo struct {
	PartitionSize    int
	Available        int
	Allocated        int
	TasksWaiting     int
	FirstWaitingTask int
}

func (k *Kernel) PartitionPoolInformation(pool int) (PartitionPoolInfo, Status) {
	if s := k.checkPartitionPool(pool); s != StatusSuccess {
		return PartitionPoolInfo{}, s
	}
	k.csEnter()
	defer k.csExit()

	p := k.partitionPools[pool]
	info := PartitionPoolInfo{
		PartitionSize: p.partitionSize,
		Available:     len(p.data)/(p.partitionSize+1) - p.used,
		Allocated:     p.used,
	}
	if k.cfg.BlockingEnabled {
		info.TasksWaiting = p.blockedCount
		info.FirstWaitingTask = k.firstWaiterLocked(ClassPartitionPool, pool)
	}
	return info, StatusSuccess
}

// PartitionPoolCount returns the configured number of partition pools.
func (k *Kernel) PartitionPoolCount() int { return len(k.partitionPools) }

// firstWaiterLocked returns the lowest task index currently waiting on
// (class, object), or 0 if none — spec §6's "index of the lowest-indexed
// blocked task (or zero if none)".
func (k *Kernel) firstWaiterLocked(class ObjectClass, object int) int {
	for i, t := range k.tasks {
		st := t.status()
		if st.State == TaskWaiting && st.Class == class && st.Object == object {
			return i
		}
	}
	return 0
}
