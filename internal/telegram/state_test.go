package telegram

import (
	"testing"
)

func TestDialogManager(t *testing.T) {
	m := newDialogManager()

	if st := m.get(1); st.step != stepNone {
		t.Errorf("fresh manager step = %v, want stepNone", st.step)
	}

	m.set(1, dialogState{step: stepCostAlias, amountCents: 1250})
	m.set(2, dialogState{step: stepRenameAlias})

	if st := m.get(1); st.step != stepCostAlias || st.amountCents != 1250 {
		t.Errorf("get(1) = %+v", st)
	}
	if st := m.get(2); st.step != stepRenameAlias {
		t.Errorf("get(2) = %+v", st)
	}

	m.clear(1)
	if st := m.get(1); st.step != stepNone {
		t.Errorf("step after clear = %v, want stepNone", st.step)
	}
	if st := m.get(2); st.step != stepRenameAlias {
		t.Errorf("clear(1) touched conversation 2: %+v", st)
	}
}
