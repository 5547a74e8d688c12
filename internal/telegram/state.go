package telegram

import (
	"sync"
)

// dialogStep names the question a conversation is currently being asked.
// stepNone means no dialogue is pending and free text records spendings
// directly.
type dialogStep int

const (
	stepNone dialogStep = iota
	stepNewCategoryAlias // /nc: waiting for the alias
	stepNewCategoryName  // /nc: alias chosen, waiting for the name
	stepRenameAlias      // /uc: waiting for the alias to rename
	stepRenameName       // /uc: alias chosen, waiting for the new name
	stepCostAlias        // spending: amount known, waiting for the alias
	stepCostAmount       // spending: alias known, waiting for the amount
)

// dialogState is one pending dialogue: the step plus whatever answers have
// been collected so far.
type dialogState struct {
	step        dialogStep
	alias       string
	categoryID  int64
	amountCents int64
}

// dialogManager tracks at most one pending dialogue per conversation.
// Starting a new dialogue overwrites whatever was pending; finishing one
// clears it. Commands that do not ask questions leave the state alone, so a
// quick /lc in the middle of a dialogue does not abandon it.
type dialogManager struct {
	mu     sync.RWMutex
	states map[int64]dialogState
}

func newDialogManager() *dialogManager {
	return &dialogManager{states: make(map[int64]dialogState)}
}

// get returns the pending dialogue for a conversation; the zero value means
// none is pending.
func (m *dialogManager) get(conversationID int64) dialogState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[conversationID]
}

func (m *dialogManager) set(conversationID int64, st dialogState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[conversationID] = st
}

func (m *dialogManager) clear(conversationID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, conversationID)
}
