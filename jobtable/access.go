package jobtable

// This file is the Slot's public accessor surface. depgraph, worker and
// sched all operate on slots obtained from Table.Slot/Table.Alloc and need
// to read and mutate fields that reset (in slot.go) must also reach; keeping
// the struct fields unexported and funneling every other package through
// these methods keeps reset() the single place that has to enumerate them.

func (s *Slot) Name() string      { return s.name }
func (s *Slot) SetName(n string)  { s.name = n }

func (s *Slot) Priority() Priority     { return s.priority }
func (s *Slot) SetPriority(p Priority) { s.priority = p }

func (s *Slot) Fn() Func     { return s.fn }
func (s *Slot) SetFn(f Func) { s.fn = f }

func (s *Slot) CoopFn() CooperativeFunc     { return s.coopFn }
func (s *Slot) SetCoopFn(f CooperativeFunc) { s.coopFn = f }

func (s *Slot) Data() any     { return s.data }
func (s *Slot) SetData(d any) { s.data = d }

// IncomingDeps returns the current fan-in counter (spec §3/§4.F).
func (s *Slot) IncomingDeps() int32 { return s.incomingDeps.Load() }

// SetIncomingDeps initializes the fan-in counter. Callers use this only
// before a slot is published as Ready or Running (spec §4.G "schedule").
func (s *Slot) SetIncomingDeps(v int32) { s.incomingDeps.Store(v) }

// AddIncoming fetch-adds delta to the fan-in counter and returns the
// resulting value, used for both schedule's initial +1/-1 dance and the
// completion cascade's fetch_sub (delta negative).
func (s *Slot) AddIncoming(delta int32) int32 {
	return s.incomingDeps.Add(delta)
}

// AddDependent records idx as a dependent of this slot (spec §4.F
// add_dependency's "append to prerequisite.outgoing_deps").
func (s *Slot) AddDependent(idx uint32) { s.addDependent(idx) }

// Dependents returns every recorded dependent slot index.
func (s *Slot) Dependents() []uint32 { return s.dependents() }

func (s *Slot) SetState(st State) { s.state.Store(uint32(st)) }

// Handle returns this slot's current Handle, combining its fixed index
// with its live generation.
func (s *Slot) Handle() Handle { return Handle{Index: s.index, Generation: s.Generation()} }

func (s *Slot) Group() uint32     { return s.group }
func (s *Slot) SetGroup(g uint32) { s.group = g }

func (s *Slot) Parent() Handle     { return s.parent }
func (s *Slot) SetParent(h Handle) { s.parent = h }

func (s *Slot) Arena() uint32     { return s.arena }
func (s *Slot) SetArena(a uint32) { s.arena = a }

func (s *Slot) CreatedAt() int64      { return s.createdAt }
func (s *Slot) SetCreatedAt(t int64)  { s.createdAt = t }
func (s *Slot) StartedAt() int64      { return s.startedAt }
func (s *Slot) SetStartedAt(t int64)  { s.startedAt = t }
func (s *Slot) CompletedAt() int64    { return s.completedAt }
func (s *Slot) SetCompletedAt(t int64) { s.completedAt = t }

func (s *Slot) WorkerID() int32     { return s.workerID }
func (s *Slot) SetWorkerID(w int32) { s.workerID = w }
