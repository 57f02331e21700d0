package vm

import (
	"github.com/ethereum/go-ethereum/common"
)

// State is the world state the interpreter reads and writes: the code
// deployed at each address, persistent storage and transient storage.
// Every storage write is journaled so that a failed frame can be
// rolled back with RevertToSnapshot.
//
// The zero value is not usable; call NewState.
type State struct {
	code      map[common.Address][]byte
	storage   map[common.Address]map[common.Hash]common.Hash
	transient map[common.Address]map[common.Hash]common.Hash

	journal []journalEntry
}

type journalEntry struct {
	transient bool
	addr      common.Address
	key       common.Hash
	prev      common.Hash
}

func NewState() *State {
	return &State{
		code:      make(map[common.Address][]byte),
		storage:   make(map[common.Address]map[common.Hash]common.Hash),
		transient: make(map[common.Address]map[common.Hash]common.Hash),
	}
}

// SetCode deploys code at addr. Deployment is not journaled.
func (s *State) SetCode(addr common.Address, code []byte) {
	s.code[addr] = append([]byte(nil), code...)
}

// Code returns the code deployed at addr, or nil.
func (s *State) Code(addr common.Address) []byte {
	return s.code[addr]
}

// Storage returns the persistent storage value at key for addr.
func (s *State) Storage(addr common.Address, key common.Hash) common.Hash {
	return s.storage[addr][key]
}

// SetStorage writes a persistent storage value.
func (s *State) SetStorage(addr common.Address, key, value common.Hash) {
	s.journal = append(s.journal, journalEntry{
		addr: addr,
		key:  key,
		prev: s.Storage(addr, key),
	})
	set(s.storage, addr, key, value)
}

// Transient returns the transient storage value at key for addr.
func (s *State) Transient(addr common.Address, key common.Hash) common.Hash {
	return s.transient[addr][key]
}

// SetTransient writes a transient storage value. Transient values
// are rolled back like persistent ones and are discarded entirely by
// EndTransaction.
func (s *State) SetTransient(addr common.Address, key, value common.Hash) {
	s.journal = append(s.journal, journalEntry{
		transient: true,
		addr:      addr,
		key:       key,
		prev:      s.Transient(addr, key),
	})
	set(s.transient, addr, key, value)
}

// Snapshot returns an identifier for the current state, to be passed
// to RevertToSnapshot.
func (s *State) Snapshot() int {
	return len(s.journal)
}

// RevertToSnapshot undoes every storage write made since the
// snapshot with the given id was taken.
func (s *State) RevertToSnapshot(id int) {
	for i := len(s.journal) - 1; i >= id; i-- {
		e := s.journal[i]
		if e.transient {
			set(s.transient, e.addr, e.key, e.prev)
		} else {
			set(s.storage, e.addr, e.key, e.prev)
		}
	}
	s.journal = s.journal[:id]
}

// EndTransaction clears transient storage and the journal. Call
// runs it after every top-level call.
func (s *State) EndTransaction() {
	s.transient = make(map[common.Address]map[common.Hash]common.Hash)
	s.journal = s.journal[:0]
}

func set(m map[common.Address]map[common.Hash]common.Hash, addr common.Address, key, value common.Hash) {
	slots := m[addr]
	if value == (common.Hash{}) {
		delete(slots, key)
		return
	}
	if slots == nil {
		slots = make(map[common.Hash]common.Hash)
		m[addr] = slots
	}
	slots[key] = value
}
